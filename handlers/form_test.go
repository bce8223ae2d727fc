package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"asset_manager_go/models"

	"github.com/stretchr/testify/assert"
)

func TestCreateFormHandler(t *testing.T) {
	database := setupTestDB(t)
	org := &models.Organization{Name: "Forms Org"}
	assert.NoError(t, database.Create(org).Error)

	t.Run("Success", func(t *testing.T) {
		body := map[string]interface{}{
			"organization_id": org.ID,
			"name":            "Asset Intake",
			"tag_config":      `{"enabled": true, "segments": [{"type": "sequence"}]}`,
			"fields": []map[string]interface{}{
				{"label": "Department", "field_type": "text", "position": 1, "required": true},
				{"label": "Photo", "field_type": "camera", "position": 2},
			},
		}
		payload, _ := json.Marshal(body)

		_, c, rec := setupEcho(http.MethodPost, "/api/forms", strings.NewReader(string(payload)))
		c.Request().Header.Set("Content-Type", "application/json")

		err := CreateFormHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var created models.FormDefinition
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Len(t, created.Fields, 2)
		assert.NotNil(t, created.TagConfig)
	})

	t.Run("Malformed tag config rejected", func(t *testing.T) {
		body := map[string]interface{}{
			"organization_id": org.ID,
			"name":            "Broken",
			"tag_config":      `{not json`,
		}
		payload, _ := json.Marshal(body)

		_, c, rec := setupEcho(http.MethodPost, "/api/forms", strings.NewReader(string(payload)))
		c.Request().Header.Set("Content-Type", "application/json")

		err := CreateFormHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("Missing fields", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/forms", strings.NewReader(`{}`))
		c.Request().Header.Set("Content-Type", "application/json")

		err := CreateFormHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateFormTagConfigHandler(t *testing.T) {
	database := setupTestDB(t)
	org := &models.Organization{Name: "Config Org"}
	assert.NoError(t, database.Create(org).Error)
	form := &models.FormDefinition{OrganizationID: org.ID, Name: "Intake"}
	assert.NoError(t, database.Create(form).Error)

	formID := fmt.Sprintf("%d", form.ID)
	payload := `{"tag_config": "{\"enabled\": true, \"segments\": [{\"type\": \"sequence\"}]}"}`
	_, c, rec := setupEcho(http.MethodPut, "/api/forms/"+formID+"/tag-config", strings.NewReader(payload))
	c.Request().Header.Set("Content-Type", "application/json")
	c.SetParamNames("id")
	c.SetParamValues(formID)

	err := UpdateFormTagConfigHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var updated models.FormDefinition
	assert.NoError(t, database.First(&updated, "id = ?", form.ID).Error)
	assert.NotNil(t, updated.TagConfig)
}
