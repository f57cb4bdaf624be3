// Package profile computes profile completeness.
//
// Completeness used to be an ad hoc check over whatever fields happened to be
// set. Here it is a predicate over a fixed, known field set: the `validate`
// tags on model.ProfileBase and on the role's detail record. The percentage
// is the share of those rules that currently pass.
package profile

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/sparko/internal/apperror"
	"github.com/sakif/sparko/internal/model"
)

// Evaluator scores profiles. It is safe for concurrent use; validator caches
// struct metadata internally.
type Evaluator struct {
	validate *validator.Validate
	// rules per role: how many validation rules an empty profile fails.
	rules map[model.Role]int
}

// NewEvaluator builds an Evaluator and pre-computes the rule count of each
// role by validating an empty profile of that role.
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		rules:    make(map[model.Role]int, len(model.Roles)),
	}
	for _, r := range model.Roles {
		e.rules[r] = len(e.failures(model.NewProfile(0, r)))
	}
	return e
}

// Result is the outcome of evaluating a profile.
type Result struct {
	Complete   bool     `json:"isComplete"`
	Percentage int      `json:"completionPercentage"`
	Missing    []string `json:"missing,omitempty"`
}

// Evaluate scores p. A profile whose detail record is missing is scored as
// if the record were empty.
func (e *Evaluator) Evaluate(p *model.Profile) Result {
	total := e.rules[p.Role]
	failed := e.failures(p)

	res := Result{Complete: len(failed) == 0, Percentage: 100}
	if total > 0 {
		passed := total - len(failed)
		if passed < 0 {
			passed = 0
		}
		res.Percentage = passed * 100 / total
	}
	for _, fe := range failed {
		res.Missing = append(res.Missing, fe.Namespace())
	}
	return res
}

// Apply evaluates p and stores the result on it.
func (e *Evaluator) Apply(p *model.Profile) Result {
	res := e.Evaluate(p)
	p.IsComplete = res.Complete
	p.CompletionPercentage = res.Percentage
	return res
}

// CheckShape rejects a profile whose populated detail record does not match
// its Role. It does not require completeness: partial profiles are valid
// drafts.
func (e *Evaluator) CheckShape(p *model.Profile) error {
	if !p.Role.Valid() {
		return apperror.InvalidRole(string(p.Role))
	}
	set := 0
	if p.Entrepreneur != nil {
		set++
	}
	if p.Investor != nil {
		set++
	}
	if p.Partner != nil {
		set++
	}
	if set > 1 {
		return apperror.ValidationFailed("details",
			fmt.Sprintf("a %s profile may only carry %s details", p.Role, p.Role))
	}
	if set == 1 && isNilDetails(p) {
		return apperror.ValidationFailed("details",
			fmt.Sprintf("details do not belong to a %s profile", p.Role))
	}
	return nil
}

func (e *Evaluator) failures(p *model.Profile) validator.ValidationErrors {
	var out validator.ValidationErrors
	out = append(out, e.structFailures(p.ProfileBase)...)

	details := p.Details()
	if details == nil || isNilDetails(p) {
		details = model.NewProfile(0, p.Role).Details()
	}
	if details != nil {
		out = append(out, e.structFailures(details)...)
	}
	return out
}

func (e *Evaluator) structFailures(s any) validator.ValidationErrors {
	err := e.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	// InvalidValidationError only happens for non-struct input, which would
	// be a programming error in this package.
	panic(fmt.Sprintf("profile: validating %T: %v", s, err))
}

// isNilDetails reports whether the detail pointer selected by p.Role is nil.
func isNilDetails(p *model.Profile) bool {
	switch p.Role {
	case model.RoleEntrepreneur:
		return p.Entrepreneur == nil
	case model.RoleInvestor:
		return p.Investor == nil
	case model.RolePartner:
		return p.Partner == nil
	}
	return true
}
