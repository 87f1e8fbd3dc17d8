package gotesting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/specvital/locator/pkg/domain"
)

func TestRunPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{name: "TestSample", want: "^TestSample$"},
		{name: "TestSample/case_b", want: "^TestSample$/^case_b$"},
		{name: "TestAdd/case 1", want: "^TestAdd$/^case_1$"},
		{name: "TestRegex/a+b (x)", want: `^TestRegex$/^a\+b_\(x\)$`},
		{name: "TestDup/same#01", want: "^TestDup$/^same#01$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, RunPattern(tt.name))
		})
	}
}

func TestStrategy_Command(t *testing.T) {
	t.Parallel()

	t.Run("without build tags", func(t *testing.T) {
		t.Parallel()

		r := domain.Runnable{
			Name: "TestSample/case_b",
			Path: "pkg/sample/run_test.go",
			Meta: domain.Metadata{Go: &domain.GoTestMetadata{}},
		}

		cmd := NewStrategy().Command(r)
		assert.Equal(t, "go", cmd.Name)
		assert.Equal(t, []string{"test", "-v", "-run", "^TestSample$/^case_b$", "."}, cmd.Args)
		assert.Equal(t, "pkg/sample", cmd.Dir)
	})

	t.Run("with build tags", func(t *testing.T) {
		t.Parallel()

		meta := &domain.GoTestMetadata{}
		meta.AppendBuildTags(domain.TagGroup{"unix", "mysql"}, domain.TagGroup{"postgres"})
		r := domain.Runnable{Name: "TestTagged", Path: "x_test.go", Meta: domain.Metadata{Go: meta}}

		cmd := NewStrategy(WithGoBinary("/usr/local/go/bin/go")).Command(r)
		assert.Equal(t, "/usr/local/go/bin/go", cmd.Name)
		assert.Equal(t, []string{"test", "-v", "-run", "^TestTagged$", "-tags=unix,mysql,postgres", "."}, cmd.Args)
		assert.Equal(t, ".", cmd.Dir)
	})

	t.Run("nil metadata", func(t *testing.T) {
		t.Parallel()

		cmd := NewStrategy().Command(domain.Runnable{Name: "TestX", Path: "a/x_test.go"})
		assert.NotContains(t, cmd.String(), "-tags")
	})
}
