package task

import (
	"errors"
	"testing"

	config "blacktask/internal/config"
	formatter "blacktask/internal/formatter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSettings []string

func (s staticSettings) TestsDirectoryArgs() []string { return s }

func newTestProject(t *testing.T) *Project {
	t.Helper()
	p := NewProject(t.TempDir(), staticSettings{"tests"})
	_, err := p.Do("blackCheck", "lint", true, formatter.Black{}, config.DefaultTaskConfig())
	require.NoError(t, err)
	_, err = p.Do("blackFormat", "fmt", false, formatter.Black{}, config.DefaultTaskConfig())
	require.NoError(t, err)
	_, err = p.Do("otherLint", "lint", false, formatter.Black{}, config.DefaultTaskConfig())
	require.NoError(t, err)
	return p
}

func TestProjectDo(t *testing.T) {
	p := NewProject("/work", nil)

	cfg := config.DefaultTaskConfig()
	tk, err := p.Do(" blackCheck ", "lint", true, formatter.Black{}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "blackCheck", tk.Name)
	assert.Equal(t, "lint", tk.Group)
	assert.True(t, tk.Default)
	assert.Equal(t, "black", tk.Tool())

	got, ok := p.Task("blackCheck")
	require.True(t, ok)
	assert.Same(t, tk, got)

	cfg.SourceDirectories[0] = "mutated"
	assert.Equal(t, []string{"src"}, tk.Config.SourceDirectories, "task must own its config")
}

func TestProjectDoRejectsInvalid(t *testing.T) {
	p := NewProject("/work", nil)

	_, err := p.Do("  ", "lint", true, formatter.Black{}, config.DefaultTaskConfig())
	assert.ErrorIs(t, err, ErrInvalidTask)

	_, err = p.Do("x", "lint", true, nil, config.DefaultTaskConfig())
	assert.ErrorIs(t, err, ErrInvalidTask)

	_, err = p.Do("x", "lint", true, formatter.Black{}, config.DefaultTaskConfig())
	require.NoError(t, err)
	_, err = p.Do("x", "fmt", false, formatter.Black{}, config.DefaultTaskConfig())
	require.ErrorIs(t, err, ErrDuplicateTask)

	var taskErr *Error
	require.True(t, errors.As(err, &taskErr))
	assert.Contains(t, taskErr.Error(), `"x"`)
	assert.Len(t, p.Tasks(), 1)
}

func TestProjectZeroValueDo(t *testing.T) {
	var p Project
	_, err := p.Do("a", "lint", true, formatter.Black{}, config.DefaultTaskConfig())
	require.NoError(t, err)
	_, ok := p.Task("a")
	assert.True(t, ok)
}

func TestTaskCommandUsesSettingsAndLiveConfig(t *testing.T) {
	p := newTestProject(t)
	tk, _ := p.Task("blackCheck")

	assert.Equal(t, []string{"black", "src", "tests"}, tk.Command())

	tk.Config.CheckOnly = true
	tk.Config.AdditionalArgs = append(tk.Config.AdditionalArgs, "--fast")
	assert.Equal(t, []string{"black", "src", "tests", "--check", "--fast"}, tk.Command())
}

func TestTaskCommandWithoutSettings(t *testing.T) {
	p := NewProject("/work", nil)
	tk, err := p.Do("a", "fmt", true, formatter.Black{}, config.DefaultTaskConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"black", "src"}, tk.Command())
}

func TestProjectSelect(t *testing.T) {
	p := newTestProject(t)

	tests := []struct {
		name    string
		targets []string
		want    []string
		wantErr error
	}{
		{name: "defaults", targets: nil, want: []string{"blackCheck"}},
		{name: "group", targets: []string{"lint"}, want: []string{"blackCheck", "otherLint"}},
		{name: "task name", targets: []string{"blackFormat"}, want: []string{"blackFormat"}},
		{name: "dedup keeps registration order", targets: []string{"fmt", "otherLint", "lint"}, want: []string{"blackCheck", "blackFormat", "otherLint"}},
		{name: "unknown", targets: []string{"nope"}, wantErr: ErrUnknownTarget},
		{name: "empty target", targets: []string{""}, wantErr: ErrUnknownTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Select(tt.targets...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, tk := range got {
				names = append(names, tk.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestProjectTasksReturnsCopy(t *testing.T) {
	p := newTestProject(t)
	tasks := p.Tasks()
	tasks[0] = nil
	assert.NotNil(t, p.Tasks()[0])
}
