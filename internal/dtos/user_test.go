package dtos

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/finsarthi/internal/domain"
)

func TestFromDomainMasksPhoneAndDropsPassword(t *testing.T) {
	phone := "+919876543210"
	dto := FromDomain(domain.User{ID: 3, Role: domain.RoleCoach, Name: "Kavya", Phone: &phone, Password: "hash"})
	assert.Equal(t, "+91****10", dto.Phone)
	assert.Equal(t, "coach", dto.Role)

	raw, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.NotContains(t, string(raw), "9876543")
}

func TestMaskPhoneNumberShortInput(t *testing.T) {
	assert.Equal(t, "12345", maskPhoneNumber("12345"))
}
