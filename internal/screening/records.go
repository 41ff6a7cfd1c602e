package screening

import (
	"iter"
	"slices"
	"strings"
)

const (
	recordSource = "simulation"
	emailDomain  = "email.com"
)

var namePool = []string{
	"João Silva",
	"Maria Santos",
	"Pedro Costa",
	"Ana Oliveira",
	"Carlos Souza",
	"Juliana Lima",
	"Rafael Pereira",
	"Fernanda Alves",
}

var defaultEducationPool = []string{
	"Ciência da Computação",
	"Engenharia de Software",
	"Sistemas de Informação",
	"Administração",
}

// GenerateRecords yields count synthetic approved records. The sequence holds no
// state, so ranging over it twice yields the same records.
func GenerateRecords(count int, educationTerms []string) iter.Seq[ApprovedRecord] {
	pool := educationTerms
	if len(pool) == 0 {
		pool = defaultEducationPool
	}

	return func(yield func(ApprovedRecord) bool) {
		for i := 0; i < count; i++ {
			if !yield(newRecord(namePool[i%len(namePool)], pool[i%len(pool)])) {
				return
			}
		}
	}
}

// Records collects GenerateRecords into a slice. It never returns nil.
func Records(count int, educationTerms []string) []ApprovedRecord {
	records := slices.Collect(GenerateRecords(count, educationTerms))
	if records == nil {
		return []ApprovedRecord{}
	}
	return records
}

func newRecord(name, education string) ApprovedRecord {
	return ApprovedRecord{
		FileName:       "curriculum_" + slug(name, "_") + ".pdf",
		EducationMatch: education,
		OriginEmail:    slug(name, ".") + "@" + emailDomain,
		Source:         recordSource,
	}
}

// slug lowercases the name and replaces its first space with sep.
func slug(name, sep string) string {
	return strings.Replace(strings.ToLower(name), " ", sep, 1)
}
