package services

import (
	"testing"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCategorizePR(t *testing.T) {
	testCases := []struct {
		name       string
		repository string
		title      string
		files      []string
		expected   models.PRCategory
	}{
		{"Internal repository", "omnibot-service", "Fix handler", []string{"src/main.go"}, models.PRCategoryInternal},
		{"Internal title", "web", "Update Omnibot hooks", nil, models.PRCategoryInternal},
		{"No files", "web", "Empty", nil, models.PRCategoryApplication},
		{"Only tests", "web", "Add tests", []string{"pkg/foo_test.go", "src/__tests__/a.js"}, models.PRCategoryTests},
		{"Application with tests", "web", "Feature", []string{"src/app.go", "src/app_test.go"}, models.PRCategoryApplication},
		{"Mostly infra", "web", "CI", []string{".github/workflows/ci.yml", "Dockerfile", "deploy/values.yaml", "src/main.go"}, models.PRCategoryInfra},
		{"Mixed", "web", "Feature flag", []string{"src/a.go", "deploy/b.yaml"}, models.PRCategoryMixed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CategorizePR(tc.repository, tc.title, tc.files))
		})
	}
}
