package submissions

import (
	"time"

	"github.com/google/uuid"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// Input is a validated-or-rejected submission attempt.
type Input struct {
	Kind   models.FormKind        `json:"kind"`
	UserID string                 `json:"userId"`
	Data   map[string]interface{} `json:"data"`
}

// Output reports a persisted submission.
type Output struct {
	RequestID    string          `json:"requestId"`
	Kind         models.FormKind `json:"kind"`
	Status       string          `json:"status"`
	CreatedAt    string          `json:"createdAt"`
	Notification string          `json:"notification"`
}

// NotificationSubmissionReceived confirms a persisted submission.
const NotificationSubmissionReceived = "Richiesta inviata con successo. Ti contatteremo a breve."

func buildRepairRecord(input *Input) *models.RepairRequest {
	now := time.Now().UTC().Format(time.RFC3339)
	return &models.RepairRequest{
		ID:               uuid.New().String(),
		UserID:           input.UserID,
		WatchBrand:       getString(input.Data, "watchBrand"),
		WatchModel:       getString(input.Data, "watchModel"),
		SerialNumber:     getString(input.Data, "serialNumber"),
		IssueDescription: getString(input.Data, "issueDescription"),
		ServiceType:      getString(input.Data, "serviceType"),
		Name:             getString(input.Data, "name"),
		Email:            getString(input.Data, "email"),
		Phone:            getString(input.Data, "phone"),
		Status:           models.RepairStatusNew,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func buildPersonalizedRecord(input *Input) *models.PersonalizedRequest {
	now := time.Now().UTC().Format(time.RFC3339)
	budgetMin, _ := toFloat(input.Data["budgetMin"])
	budgetMax, _ := toFloat(input.Data["budgetMax"])
	return &models.PersonalizedRequest{
		ID:              uuid.New().String(),
		UserID:          input.UserID,
		WatchType:       getString(input.Data, "watchType"),
		BrandPreference: getString(input.Data, "brandPreference"),
		BudgetMin:       budgetMin,
		BudgetMax:       budgetMax,
		Notes:           getString(input.Data, "notes"),
		Name:            getString(input.Data, "name"),
		Email:           getString(input.Data, "email"),
		Status:          models.PersonalizedStatusNew,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func buildSellRecord(input *Input) *models.SellRequest {
	now := time.Now().UTC().Format(time.RFC3339)
	desiredPrice, _ := toFloat(input.Data["desiredPrice"])
	return &models.SellRequest{
		ID:           uuid.New().String(),
		UserID:       input.UserID,
		WatchBrand:   getString(input.Data, "watchBrand"),
		WatchModel:   getString(input.Data, "watchModel"),
		Year:         getInt(input.Data, "year"),
		Condition:    getString(input.Data, "condition"),
		DesiredPrice: desiredPrice,
		HasBox:       getBool(input.Data, "hasBox"),
		HasPapers:    getBool(input.Data, "hasPapers"),
		Description:  getString(input.Data, "description"),
		Name:         getString(input.Data, "name"),
		Email:        getString(input.Data, "email"),
		Phone:        getString(input.Data, "phone"),
		Status:       models.SellStatusNew,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func getString(data map[string]interface{}, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

func getInt(data map[string]interface{}, key string) int {
	if f, ok := toFloat(data[key]); ok {
		return int(f)
	}
	return 0
}

func getBool(data map[string]interface{}, key string) bool {
	if b, ok := data[key].(bool); ok {
		return b
	}
	return false
}
