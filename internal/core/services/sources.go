package services

import (
	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
)

// Token source names. They double as checkpoint keys and as the value of
// the chain tag in the merged token dataset.
const (
	SourceEthereum = "ethereum"
	SourceGnosis   = "gnosis_chain"
	SourceSpaces   = "spaces"
)

// ProposalsCheckpointPrefix prefixes the per-space proposal checkpoint keys.
const ProposalsCheckpointPrefix = "proposals:"

// TokensQuery pages through POAP tokens ordered by mint time.
const TokensQuery = `query Tokens($cursor: Int, $pageSize: Int) {
  tokens(first: $pageSize, orderBy: created, orderDirection: asc, where: {created_gt: $cursor}) {
    id
    owner { id tokensOwned }
    event { id tokenCount created transferCount }
    created
    transferCount
  }
}`

// SpacesQuery pages through Snapshot spaces ordered by creation time.
const SpacesQuery = `query Spaces($cursor: Int, $pageSize: Int) {
  spaces(first: $pageSize, orderBy: "created", orderDirection: asc, where: {created_gt: $cursor}) {
    id
    name
    network
    symbol
    members
    admins
    followersCount
    proposalsCount
    created
  }
}`

// ProposalsQuery pages through the closed proposals of one space.
const ProposalsQuery = `query Proposals($cursor: Int, $pageSize: Int, $space: String!) {
  proposals(first: $pageSize, orderBy: "created", orderDirection: asc,
    where: {space: $space, state: "closed", created_gt: $cursor}) {
    id
    title
    author
    created
    start
    end
    snapshot
    state
    choices
    scores
    scores_total
    votes
    space { id name }
  }
}`

// VotesQuery pages through the votes cast on one proposal.
const VotesQuery = `query Votes($cursor: Int, $pageSize: Int, $proposal: String!) {
  votes(first: $pageSize, orderBy: "created", orderDirection: asc,
    where: {proposal: $proposal, created_gt: $cursor}) {
    id
    voter
    created
    choice
    vp
    space { id }
  }
}`

// TokenSources returns the POAP token sources in crawl order.
func TokenSources(p *domain.Parameters) []domain.Source {
	mk := func(name, endpoint string) domain.Source {
		return domain.Source{
			Name:        name,
			Endpoint:    endpoint,
			Collection:  "tokens",
			Query:       TokensQuery,
			CursorField: "created",
			PageSize:    p.Extraction.TokenPageSize,
			Prefix:      "token",
			Nested:      []string{"owner", "event"},
		}
	}
	return []domain.Source{
		mk(SourceEthereum, p.EthSubgraph),
		mk(SourceGnosis, p.GnosisSubgraph),
	}
}

// SpacesSource returns the Snapshot space directory source.
func SpacesSource(p *domain.Parameters) domain.Source {
	return domain.Source{
		Name:        SourceSpaces,
		Endpoint:    p.SnapshotHub,
		Collection:  "spaces",
		Query:       SpacesQuery,
		CursorField: "created",
		PageSize:    p.Extraction.SnapshotPageSize,
		Prefix:      "space",
	}
}

// ProposalsSource returns the closed-proposal source of one space.
func ProposalsSource(p *domain.Parameters, space string) domain.Source {
	return domain.Source{
		Name:        ProposalsCheckpointPrefix + space,
		Endpoint:    p.SnapshotHub,
		Collection:  "proposals",
		Query:       ProposalsQuery,
		CursorField: "created",
		PageSize:    p.Extraction.SnapshotPageSize,
		Prefix:      "proposal",
		Nested:      []string{"space"},
		Variables:   map[string]any{"space": space},
	}
}

// VotesSource returns the vote source of one proposal.
func VotesSource(p *domain.Parameters, proposal string) domain.Source {
	return domain.Source{
		Name:        "votes:" + proposal,
		Endpoint:    p.SnapshotHub,
		Collection:  "votes",
		Query:       VotesQuery,
		CursorField: "created",
		PageSize:    p.Extraction.VotesPageSize,
		Prefix:      "vote",
		Nested:      []string{"space"},
		Variables:   map[string]any{"proposal": proposal},
	}
}
