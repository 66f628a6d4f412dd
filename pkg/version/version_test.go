package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/outlier/pkg/version"
)

func TestString(t *testing.T) {
	version.InitBinaryVersion()

	got := version.String()

	assert.Contains(t, got, "outlier ")
	assert.Contains(t, got, version.Version)
	assert.Contains(t, got, "commit: "+version.Commit)
}
