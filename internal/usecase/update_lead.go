package usecase

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// Operator-writable values are capped before persistence.
const maxFieldLength = 1000

// UpdateLeadInput is the PATCH body. Nil means "leave as is"; only the
// allow-listed fields exist here, everything else in the request is ignored.
type UpdateLeadInput struct {
	Status       *string `json:"status"`
	Notes        *string `json:"notes"`
	CustomerName *string `json:"customerName"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
}

type UpdateLeadUseCase struct {
	Repo entity.LeadRepositoryInterface
}

func NewUpdateLeadUseCase(repo entity.LeadRepositoryInterface) *UpdateLeadUseCase {
	return &UpdateLeadUseCase{Repo: repo}
}

func (uc *UpdateLeadUseCase) Execute(ctx context.Context, id string, input UpdateLeadInput) (*entity.Lead, error) {
	var update entity.LeadUpdate

	if input.Status != nil {
		status := clean(*input.Status)
		if !entity.LeadStatus(status).Valid() {
			return nil, NewDomainError(CodeValidation, "status must be one of new, contacted, qualified, converted, lost")
		}
		update.Status = &status
	}

	if input.Email != nil {
		email := strings.ToLower(clean(*input.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, NewDomainError(CodeValidation, "email is invalid")
		}
		update.Email = &email
	}

	if input.Notes != nil {
		notes := clean(*input.Notes)
		update.Notes = &notes
	}
	if input.CustomerName != nil {
		name := clean(*input.CustomerName)
		update.CustomerName = &name
	}
	if input.Phone != nil {
		phone := clean(*input.Phone)
		update.Phone = &phone
	}

	if update.Empty() {
		return nil, NewDomainError(CodeValidation, "no updatable fields supplied")
	}

	lead, err := uc.Repo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NewDomainError(CodeNotFound, "lead not found")
		}
		return nil, &TechnicalError{Code: "PERSISTENCE", Message: err.Error()}
	}
	return lead, nil
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxFieldLength {
		s = s[:maxFieldLength]
	}
	return s
}
