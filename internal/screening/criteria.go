package screening

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Bounds for Criteria.MaxEmails. The validate tag on the field must match.
const (
	MinEmails = 1
	MaxEmails = 1000
)

// ErrInvalidCriteria is returned by Validate when the criteria can not be screened.
var ErrInvalidCriteria = errors.New("invalid screening criteria")

// Criteria describes a single screening request.
type Criteria struct {
	PositionDescription string   `json:"vaga_descricao" mapstructure:"position" validate:"required"`
	Keywords            []string `json:"palavras_chave" mapstructure:"keywords" validate:"required,min=1,dive,required"`
	EducationTerms      []string `json:"formacoes" mapstructure:"education"`
	ExcludedTerms       []string `json:"palavras_negativas" mapstructure:"excluded"`
	MaxEmails           int      `json:"max_emails" mapstructure:"max-emails" validate:"min=1,max=1000"`
	UseOCR              bool     `json:"usar_ocr" mapstructure:"use-ocr"`

	// Account is the mailbox shown to the operator. It is never sent to the API.
	Account string `json:"-" mapstructure:"account" validate:"omitempty,email"`
}

var validate = validator.New()

// Normalize trims the description and all term lists, dropping empty terms.
func (c *Criteria) Normalize() {
	c.PositionDescription = strings.TrimSpace(c.PositionDescription)
	c.Account = strings.TrimSpace(c.Account)
	c.Keywords = cleanTerms(c.Keywords)
	c.EducationTerms = cleanTerms(c.EducationTerms)
	c.ExcludedTerms = cleanTerms(c.ExcludedTerms)
}

// Validate checks the criteria before they are handed to the estimator or the API.
// The estimator itself assumes valid input.
func (c *Criteria) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: criteria are required", ErrInvalidCriteria)
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidCriteria, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidCriteria, err)
	}

	return nil
}

// SplitTerms splits a comma separated list as typed in the screening form.
func SplitTerms(s string) []string {
	return cleanTerms(strings.Split(s, ","))
}

func cleanTerms(terms []string) []string {
	cleaned := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		cleaned = append(cleaned, term)
	}
	return cleaned
}
