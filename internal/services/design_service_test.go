package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
)

func newDesignService(designs *mockDesignStore, categories *mockCategoryStore, users *mockRoleLister, notifier *recordingNotifier) *DesignService {
	return NewDesignService(designs, categories, users, notifier, nil, testLogger())
}

func TestSubmitMovesDraftToPending(t *testing.T) {
	designs := new(mockDesignStore)
	users := new(mockRoleLister)
	notifier := &recordingNotifier{}
	svc := newDesignService(designs, new(mockCategoryStore), users, notifier)

	id := uuid.New()
	designs.On("GetByID", mock.Anything, id).Return(&models.Design{
		ID:         id,
		DesignerID: "designer-1",
		Name:       "Summer Dress",
		ImageURL:   "/uploads/designs/a.png",
		Status:     models.DesignDraft,
	}, nil)
	designs.On("Update", mock.Anything, mock.Anything).Return(nil)
	users.On("ListByRole", mock.Anything, models.RoleInventoryManager).Return([]models.User{{ID: "manager-1"}, {ID: "manager-2"}}, nil)

	design, err := svc.Submit(context.Background(), "designer-1", id)
	require.NoError(t, err)
	assert.Equal(t, models.DesignPending, design.Status)
	require.Len(t, notifier.broadcast, 1)
	assert.ElementsMatch(t, []string{"manager-1", "manager-2"}, notifier.broadcast[0])
}

func TestSubmitRejectsNonDraft(t *testing.T) {
	designs := new(mockDesignStore)
	svc := newDesignService(designs, new(mockCategoryStore), new(mockRoleLister), &recordingNotifier{})

	id := uuid.New()
	designs.On("GetByID", mock.Anything, id).Return(&models.Design{
		ID:         id,
		DesignerID: "designer-1",
		ImageURL:   "/uploads/designs/a.png",
		Status:     models.DesignPending,
	}, nil)

	_, err := svc.Submit(context.Background(), "designer-1", id)
	_, ok := IsInvalidStateError(err)
	assert.True(t, ok, "expected invalid state error, got %v", err)
	designs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSubmitRequiresImage(t *testing.T) {
	designs := new(mockDesignStore)
	svc := newDesignService(designs, new(mockCategoryStore), new(mockRoleLister), &recordingNotifier{})

	id := uuid.New()
	designs.On("GetByID", mock.Anything, id).Return(&models.Design{
		ID:         id,
		DesignerID: "designer-1",
		Status:     models.DesignDraft,
	}, nil)

	_, err := svc.Submit(context.Background(), "designer-1", id)
	_, ok := IsValidationError(err)
	assert.True(t, ok, "expected validation error, got %v", err)
}

func TestSubmitRejectsForeignDesign(t *testing.T) {
	designs := new(mockDesignStore)
	svc := newDesignService(designs, new(mockCategoryStore), new(mockRoleLister), &recordingNotifier{})

	id := uuid.New()
	designs.On("GetByID", mock.Anything, id).Return(&models.Design{
		ID:         id,
		DesignerID: "designer-1",
		Status:     models.DesignDraft,
	}, nil)

	_, err := svc.Submit(context.Background(), "designer-2", id)
	_, ok := IsForbiddenError(err)
	assert.True(t, ok, "expected forbidden error, got %v", err)
}

func TestUpdateDraftRejectsSubmittedDesign(t *testing.T) {
	designs := new(mockDesignStore)
	svc := newDesignService(designs, new(mockCategoryStore), new(mockRoleLister), &recordingNotifier{})

	id := uuid.New()
	designs.On("GetByID", mock.Anything, id).Return(&models.Design{
		ID:         id,
		DesignerID: "designer-1",
		Status:     models.DesignApproved,
	}, nil)

	_, err := svc.UpdateDraft(context.Background(), "designer-1", id, DesignInput{Name: "New name"})
	_, ok := IsInvalidStateError(err)
	assert.True(t, ok, "expected invalid state error, got %v", err)
}

func TestReviewApprovesPendingDesign(t *testing.T) {
	designs := new(mockDesignStore)
	notifier := &recordingNotifier{}
	svc := newDesignService(designs, new(mockCategoryStore), new(mockRoleLister), notifier)

	id := uuid.New()
	designs.On("GetByID", mock.Anything, id).Return(&models.Design{
		ID:         id,
		DesignerID: "designer-1",
		Name:       "Summer Dress",
		Status:     models.DesignPending,
	}, nil)
	designs.On("Update", mock.Anything, mock.Anything).Return(nil)

	design, err := svc.Review(context.Background(), "staff-1", id, true, "")
	require.NoError(t, err)
	assert.Equal(t, models.DesignApproved, design.Status)
	require.NotNil(t, design.ApprovedAt)
	assert.Equal(t, []string{"designer-1"}, notifier.notified)
}

func TestReviewRejectionRequiresReason(t *testing.T) {
	designs := new(mockDesignStore)
	svc := newDesignService(designs, new(mockCategoryStore), new(mockRoleLister), &recordingNotifier{})

	id := uuid.New()
	designs.On("GetByID", mock.Anything, id).Return(&models.Design{
		ID:     id,
		Status: models.DesignPending,
	}, nil)

	_, err := svc.Review(context.Background(), "staff-1", id, false, "")
	_, ok := IsValidationError(err)
	assert.True(t, ok, "expected validation error, got %v", err)
}

func TestReviewRejectsNonPendingDesign(t *testing.T) {
	designs := new(mockDesignStore)
	svc := newDesignService(designs, new(mockCategoryStore), new(mockRoleLister), &recordingNotifier{})

	for _, status := range []models.DesignStatus{models.DesignDraft, models.DesignApproved, models.DesignRejected} {
		id := uuid.New()
		designs.On("GetByID", mock.Anything, id).Return(&models.Design{
			ID:     id,
			Status: status,
		}, nil)

		_, err := svc.Review(context.Background(), "staff-1", id, true, "")
		_, ok := IsInvalidStateError(err)
		assert.True(t, ok, "status %s: expected invalid state error, got %v", status, err)
	}
}

func TestRejectionStoresReasonAndClearsOnResubmit(t *testing.T) {
	designs := new(mockDesignStore)
	users := new(mockRoleLister)
	svc := newDesignService(designs, new(mockCategoryStore), users, &recordingNotifier{})

	id := uuid.New()
	design := &models.Design{
		ID:         id,
		DesignerID: "designer-1",
		ImageURL:   "/uploads/designs/a.png",
		Status:     models.DesignPending,
	}
	designs.On("GetByID", mock.Anything, id).Return(design, nil)
	designs.On("Update", mock.Anything, mock.Anything).Return(nil)
	users.On("ListByRole", mock.Anything, models.RoleInventoryManager).Return([]models.User{}, nil)

	rejected, err := svc.Review(context.Background(), "manager-1", id, false, "seams are off")
	require.NoError(t, err)
	assert.Equal(t, "seams are off", rejected.RejectionReason)

	// A rejected design goes back to draft through an edit before resubmission;
	// here the store hands back a draft with the stale reason still set.
	design.Status = models.DesignDraft
	resubmitted, err := svc.Submit(context.Background(), "designer-1", id)
	require.NoError(t, err)
	assert.Empty(t, resubmitted.RejectionReason)
}
