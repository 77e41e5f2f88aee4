package services

import (
	"strings"

	"github.com/alimgiray/prslo/internal/models"
)

var internalRepositories = []string{"omnibot", "payf-scripts", "square-console"}

var testPathMarkers = []string{"test", "spec", "__tests__"}

var infraPathMarkers = []string{
	"dockerfile", "docker-compose", ".github/", "ci/", "cd/", "terraform",
	"kubernetes", "k8s", "helm", "config", "makefile", "build.gradle",
	"pom.xml", "package.json", ".env",
}

var infraExtensions = []string{".yaml", ".yml", ".json", ".toml"}

// dominantRatio is the share of non-test files one kind must exceed
const dominantRatio = 0.7

// CategorizePR classifies a PR by repository, title and touched files
func CategorizePR(repository, title string, files []string) models.PRCategory {
	lowerRepo := strings.ToLower(repository)
	lowerTitle := strings.ToLower(title)
	if strings.Contains(lowerTitle, "omnibot") {
		return models.PRCategoryInternal
	}
	for _, repo := range internalRepositories {
		if strings.Contains(lowerRepo, repo) {
			return models.PRCategoryInternal
		}
	}

	var testFiles, infraFiles, appFiles int
	for _, file := range files {
		switch lower := strings.ToLower(file); {
		case isTestPath(lower):
			testFiles++
		case isInfraPath(lower):
			infraFiles++
		default:
			appFiles++
		}
	}

	if testFiles > 0 && appFiles == 0 && infraFiles == 0 {
		return models.PRCategoryTests
	}
	nonTest := appFiles + infraFiles
	if nonTest == 0 {
		return models.PRCategoryApplication
	}
	if float64(infraFiles)/float64(nonTest) > dominantRatio {
		return models.PRCategoryInfra
	}
	if float64(appFiles)/float64(nonTest) > dominantRatio {
		return models.PRCategoryApplication
	}
	return models.PRCategoryMixed
}

// test suffixes like _test.go all contain "test" or "spec"
func isTestPath(path string) bool {
	for _, marker := range testPathMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}

func isInfraPath(path string) bool {
	for _, marker := range infraPathMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	for _, ext := range infraExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
