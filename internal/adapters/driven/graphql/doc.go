// Package graphql implements the page and resource fetchers over HTTP.
//
// Pages are fetched by POSTing a GraphQL document with $cursor and
// $pageSize variables and reading the array under data.<collection>.
// Network failures and non-2xx statuses map to domain.TransportError;
// a 2xx body without the expected array maps to domain.ShapeError.
package graphql
