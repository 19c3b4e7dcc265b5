package services

import "github.com/custodia-labs/ledgerscrape/internal/core/domain"

// Merge concatenates the records of collections in order, tagging every
// record with tagKey set to the collection's source name.
// Input records are not modified.
func Merge(name, tagKey string, collections ...*domain.Collection) domain.Dataset {
	total := 0
	for _, c := range collections {
		total += c.Len()
	}

	records := make([]domain.FlatRecord, 0, total)
	for _, c := range collections {
		if c == nil {
			continue
		}
		for _, r := range c.Records {
			tagged := make(domain.FlatRecord, len(r)+1)
			for k, v := range r {
				tagged[k] = v
			}
			tagged[tagKey] = c.Source
			records = append(records, tagged)
		}
	}
	return domain.Dataset{Name: name, Records: records}
}
