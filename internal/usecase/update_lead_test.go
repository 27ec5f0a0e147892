package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

func strPtr(s string) *string { return &s }

func TestUpdateLeadUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("Invalid Status Rejected Before Persistence", func(t *testing.T) {
		repo := new(MockLeadRepository)
		uc := NewUpdateLeadUseCase(repo)

		_, err := uc.Execute(ctx, "lead-1", UpdateLeadInput{Status: strPtr("archived")})

		var domainErr *DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, CodeValidation, domainErr.Code)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Invalid Email", func(t *testing.T) {
		repo := new(MockLeadRepository)
		uc := NewUpdateLeadUseCase(repo)

		_, err := uc.Execute(ctx, "lead-1", UpdateLeadInput{Email: strPtr("not-an-email")})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("No Fields Supplied", func(t *testing.T) {
		repo := new(MockLeadRepository)
		uc := NewUpdateLeadUseCase(repo)

		_, err := uc.Execute(ctx, "lead-1", UpdateLeadInput{})
		var domainErr *DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, CodeValidation, domainErr.Code)
	})

	t.Run("Trims And Caps Values", func(t *testing.T) {
		repo := new(MockLeadRepository)
		uc := NewUpdateLeadUseCase(repo)

		var captured entity.LeadUpdate
		repo.On("Update", mock.Anything, "lead-1", mock.Anything).Run(func(args mock.Arguments) {
			captured = args.Get(2).(entity.LeadUpdate)
		}).Return(&entity.Lead{ID: "lead-1"}, nil)

		long := strings.Repeat("x", 2000)
		_, err := uc.Execute(ctx, "lead-1", UpdateLeadInput{
			Notes:        &long,
			CustomerName: strPtr("  Jane Doe  "),
			Email:        strPtr("  Jane@Example.COM "),
		})
		assert.NoError(t, err)
		assert.Len(t, *captured.Notes, 1000)
		assert.Equal(t, "Jane Doe", *captured.CustomerName)
		assert.Equal(t, "jane@example.com", *captured.Email)
	})

	t.Run("Valid Status", func(t *testing.T) {
		repo := new(MockLeadRepository)
		uc := NewUpdateLeadUseCase(repo)

		repo.On("Update", mock.Anything, "lead-1", mock.Anything).Return(&entity.Lead{ID: "lead-1", Status: entity.StatusContacted}, nil)

		lead, err := uc.Execute(ctx, "lead-1", UpdateLeadInput{Status: strPtr("contacted")})
		assert.NoError(t, err)
		assert.Equal(t, entity.StatusContacted, lead.Status)
	})

	t.Run("Not Found", func(t *testing.T) {
		repo := new(MockLeadRepository)
		uc := NewUpdateLeadUseCase(repo)

		repo.On("Update", mock.Anything, "missing", mock.Anything).Return(nil, entity.ErrNotFound)

		_, err := uc.Execute(ctx, "missing", UpdateLeadInput{Status: strPtr("lost")})
		var domainErr *DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, CodeNotFound, domainErr.Code)
	})
}
