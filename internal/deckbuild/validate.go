package deckbuild

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/domain"
)

// Validation errors. Each names exactly one violated rule of a DeckBuildConfig.
var (
	ErrParentNameRequired = errors.New("parent deck name is required")
	ErrNoSets             = errors.New("at least one set is required")
	ErrSetNameRequired    = errors.New("set name is required")
	ErrSetCardsMissing    = errors.New("set cards must be an array")
	ErrDuplicateSetName   = errors.New("all set names must be unique")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg and returns the first violated rule.
func Validate(cfg domain.DeckBuildConfig) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return err
		}
		switch fieldErrs[0].StructField() {
		case "ParentName":
			return ErrParentNameRequired
		case "Sets":
			return ErrNoSets
		case "Name":
			return ErrSetNameRequired
		case "Cards":
			return ErrSetCardsMissing
		}
		return err
	}

	seen := make(map[string]struct{}, len(cfg.Sets))
	for _, s := range cfg.Sets {
		if _, dup := seen[s.Name]; dup {
			return ErrDuplicateSetName
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}
