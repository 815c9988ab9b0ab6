package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/channel"
	"github.com/spigell/resume-matcher/internal/matcher"
	"github.com/spigell/resume-matcher/internal/preferences"
	"github.com/spigell/resume-matcher/internal/validation"
)

func init() {
	color.NoColor = true
}

const analysisBody = `{
	"match_score": 87,
	"matched_skills": ["Go", "SQL"],
	"missing_skills": ["Kubernetes"],
	"suggestions": ["Add cloud experience"],
	"insights": ["Strong backend fit"]
}`

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

// backend emulates the matcher endpoints and records analyze requests.
type backend struct {
	mu       sync.Mutex
	analyze  http.HandlerFunc
	requests []map[string]string

	// extractGate, when set, holds /extract-pdf until closed.
	extractGate chan struct{}
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/extract-pdf":
		b.mu.Lock()
		gate := b.extractGate
		b.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		writeJSON(w, http.StatusOK, `{"text": "Backend engineer, Go and Kubernetes"}`)
	case "/analyze":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		b.requests = append(b.requests, body)
		handler := b.analyze
		b.mu.Unlock()

		if handler != nil {
			handler(w, r)
			return
		}
		writeJSON(w, http.StatusOK, analysisBody)
	case "/analyses":
		writeJSON(w, http.StatusOK, `[{
			"resume_text": "Go developer with ten years of experience building distributed systems and APIs",
			"job_description": "Backend engineer",
			"created_at": "Mon, 19 Oct 2026 10:00:00 GMT",
			"analysis": `+analysisBody+`
		}]`)
	default:
		http.NotFound(w, r)
	}
}

func (b *backend) analyzeCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

type testSession struct {
	*session
	backend   *backend
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	notifier  *recordingNotifier
	prefsPath string
}

func newTestSession(t *testing.T) *testSession {
	t.Helper()

	b := &backend{}
	server := httptest.NewServer(b)
	t.Cleanup(server.Close)

	ts := &testSession{
		backend:   b,
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
		notifier:  &recordingNotifier{},
		prefsPath: filepath.Join(t.TempDir(), "preferences.yaml"),
	}

	config := &Config{
		Server:          &ServerConfig{URL: server.URL},
		PreferencesFile: ts.prefsPath,
		Render:          &RenderConfig{Animate: true},
	}

	s, err := newSession(config, zap.NewNop(), sessionOptions{
		out:      ts.stdout,
		status:   ts.stderr,
		notifier: ts.notifier,
		animate:  true,
	})
	require.NoError(t, err)
	ts.session = s

	return ts
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestRunWithFiles(t *testing.T) {
	t.Parallel()

	ts := newTestSession(t)
	resume := writeFile(t, "resume.txt", []byte("  Go developer\n"))
	job := writeFile(t, "job.pdf", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n"))

	err := ts.run(context.Background(), []input{
		{kind: channel.Resume, file: resume},
		{kind: channel.Job, file: job},
	})
	require.NoError(t, err)

	require.Equal(t, 1, ts.backend.analyzeCalls())
	assert.Equal(t, map[string]string{
		"resume_text":     "Go developer",
		"job_description": "Backend engineer, Go and Kubernetes",
	}, ts.backend.requests[0])

	text := ts.stdout.String()
	assert.Contains(t, text, "Match score: 87%")
	assert.Contains(t, text, " Go   SQL ")
	assert.Contains(t, text, "  • Kubernetes\n")
	assert.Contains(t, ts.stderr.String(), "Analyzing...")
	assert.Empty(t, ts.notifier.messages)
}

func TestRunReportsChannelErrors(t *testing.T) {
	t.Parallel()

	ts := newTestSession(t)
	empty := writeFile(t, "resume.txt", []byte(" \n"))

	err := ts.run(context.Background(), []input{
		{kind: channel.Resume, file: empty},
		{kind: channel.Job, text: "Backend engineer"},
	})
	require.ErrorIs(t, err, validation.ErrEmptyFile)

	assert.Contains(t, ts.stderr.String(), "Resume: The file appears to be empty")
	assert.Zero(t, ts.backend.analyzeCalls())
	assert.Equal(t, channel.StateReady, ts.job.State())
}

func TestRunFlagsEmptyFields(t *testing.T) {
	t.Parallel()

	ts := newTestSession(t)

	err := ts.run(context.Background(), []input{
		{kind: channel.Resume, text: "  "},
		{kind: channel.Job, text: ""},
	})
	require.ErrorIs(t, err, validation.ErrEmptyField)

	status := ts.stderr.String()
	assert.Contains(t, status, "Resume: Please provide your resume text")
	assert.Contains(t, status, "Job description: Please provide the job description")
	assert.Zero(t, ts.backend.analyzeCalls())
	assert.Empty(t, ts.stdout.String())
}

func TestRunNotifiesAnalysisFailure(t *testing.T) {
	t.Parallel()

	ts := newTestSession(t)
	ts.backend.analyze = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>Bad Gateway</html>")
	}

	err := ts.run(context.Background(), []input{
		{kind: channel.Resume, text: "Go developer"},
		{kind: channel.Job, text: "Backend engineer"},
	})
	require.ErrorIs(t, err, matcher.ErrUnexpectedResponseFormat)

	require.Len(t, ts.notifier.messages, 1)
	assert.Contains(t, ts.notifier.messages[0], "Expected JSON response")
	assert.False(t, ts.orchestrator.Busy())
	assert.Empty(t, ts.stdout.String())
}

func TestDropUsesFirstPath(t *testing.T) {
	t.Parallel()

	ts := newTestSession(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "my resume.txt")
	second := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(first, []byte("dropped resume"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("ignored"), 0o600))

	ts.resumeZone.Enter()
	require.NoError(t, ts.drop(context.Background(), channel.Resume, "'"+first+"' "+second))

	assert.False(t, ts.resumeZone.Highlighted())
	assert.Equal(t, "dropped resume", ts.resume.Text())
	assert.Equal(t, "my resume.txt", ts.resume.Selected())
}

func TestDropMissingFileResetsChannel(t *testing.T) {
	t.Parallel()

	ts := newTestSession(t)
	require.NoError(t, ts.paste(context.Background(), channel.Job, "Old job text"))

	ts.jobZone.Enter()
	err := ts.drop(context.Background(), channel.Job, filepath.Join(t.TempDir(), "absent.pdf"))
	require.ErrorIs(t, err, fs.ErrNotExist)

	assert.False(t, ts.jobZone.Highlighted())
	snap := ts.job.Snapshot()
	assert.Equal(t, channel.StateError, snap.State)
	assert.Empty(t, snap.Text)
	assert.Empty(t, snap.Selected)
	assert.Equal(t, err, snap.Err)
}

func TestLoadUnreadableFileResetsChannel(t *testing.T) {
	t.Parallel()

	ts := newTestSession(t)
	previous := writeFile(t, "cv.txt", []byte("Old resume text"))
	require.NoError(t, ts.loadFile(context.Background(), channel.Resume, previous))
	require.Equal(t, "cv.txt", ts.resume.Selected())

	missing := filepath.Join(t.TempDir(), "absent.txt")
	err := ts.loadFile(context.Background(), channel.Resume, missing)
	require.ErrorIs(t, err, fs.ErrNotExist)

	snap := ts.resume.Snapshot()
	assert.Equal(t, channel.StateError, snap.State)
	assert.Empty(t, snap.Text)
	assert.Empty(t, snap.Selected)
	assert.True(t, snap.Enabled)
	assert.Equal(t, err, snap.Err)
}

func TestRunReportsUnreadableFileInItsSlot(t *testing.T) {
	t.Parallel()

	ts := newTestSession(t)
	missing := filepath.Join(t.TempDir(), "absent.txt")

	err := ts.run(context.Background(), []input{
		{kind: channel.Resume, file: missing},
		{kind: channel.Job, text: "Backend engineer"},
	})
	require.ErrorIs(t, err, fs.ErrNotExist)

	assert.Contains(t, ts.stderr.String(), "Resume: open "+missing)
	assert.Equal(t, channel.StateError, ts.resume.State())
	assert.Zero(t, ts.backend.analyzeCalls())
}

func TestMenuHidesInputWhileProcessing(t *testing.T) {
	t.Parallel()

	ts := newTestSession(t)
	gate := make(chan struct{})
	ts.backend.extractGate = gate

	resume := writeFile(t, "resume.pdf", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n"))

	done := make(chan error, 1)
	go func() { done <- ts.loadFile(context.Background(), channel.Resume, resume) }()

	require.Eventually(t, func() bool { return ts.resume.State() == channel.StateBusy }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{
		PromptLoadJob, PromptDropJob, PromptPasteJob,
		PromptAnalyze, PromptTheme, PromptHistory, PromptExit,
	}, ts.menuItems())
	assert.Contains(t, ts.label(), "Resume: processing resume.pdf...")

	for _, action := range []string{PromptLoadResume, PromptDropResume, PromptPasteResume} {
		assert.ErrorIs(t, ts.handleAction(context.Background(), action), errInputDisabled, action)
	}

	close(gate)
	require.NoError(t, <-done)

	assert.Equal(t, []string{
		PromptLoadResume, PromptDropResume, PromptPasteResume,
		PromptLoadJob, PromptDropJob, PromptPasteJob,
		PromptAnalyze, PromptTheme, PromptHistory, PromptExit,
	}, ts.menuItems())
}

func TestAskPasteKeepsLineBreaks(t *testing.T) {
	t.Parallel()

	ts := newTestSession(t)
	ts.input = newStdinPump(strings.NewReader("Jane Doe\nSenior Go Engineer\n\n- Kubernetes\n.\n2\n"), false)

	require.NoError(t, ts.askPaste(context.Background(), channel.Resume))
	assert.Equal(t, "Jane Doe\nSenior Go Engineer\n\n- Kubernetes", ts.resume.Text())
	assert.Contains(t, ts.stderr.String(), `Finish with a line containing only "." or Ctrl-D`)

	// input after the terminator is left for the next prompt
	r := ts.input.reader()
	defer r.Close()
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "2\n", string(rest))
}

func TestToggleThemePersists(t *testing.T) {
	t.Parallel()

	ts := newTestSession(t)

	theme, err := ts.toggleTheme()
	require.NoError(t, err)
	assert.Equal(t, preferences.Dark, theme)

	assert.Equal(t, preferences.Dark, preferences.Open(ts.prefsPath, zap.NewNop()).Theme())
}

func TestThemeActionNamesPreferencesFile(t *testing.T) {
	t.Parallel()

	ts := newTestSession(t)

	require.NoError(t, ts.handleAction(context.Background(), PromptTheme))
	assert.Contains(t, ts.stderr.String(), "Theme: dark (saved to "+ts.prefsPath+")")
}

func TestChangeTheme(t *testing.T) {
	t.Parallel()

	prefs := preferences.Open(filepath.Join(t.TempDir(), "preferences.yaml"), zap.NewNop())

	theme, err := changeTheme(prefs, nil)
	require.NoError(t, err)
	assert.Equal(t, preferences.Light, theme)

	theme, err = changeTheme(prefs, []string{"DARK"})
	require.NoError(t, err)
	assert.Equal(t, preferences.Dark, theme)

	theme, err = changeTheme(prefs, []string{"toggle"})
	require.NoError(t, err)
	assert.Equal(t, preferences.Light, theme)

	_, err = changeTheme(prefs, []string{"blue"})
	assert.Error(t, err)
	assert.Equal(t, preferences.Light, prefs.Theme())
}

func TestPrintHistory(t *testing.T) {
	t.Parallel()

	ts := newTestSession(t)

	records, err := ts.client.History(context.Background())
	require.NoError(t, err)

	var out bytes.Buffer
	printHistory(&out, records)

	text := out.String()
	assert.Contains(t, text, "Mon, 19 Oct 2026 10:00:00 GMT  87%")
	assert.Contains(t, text, "  job:    Backend engineer\n")
	assert.Contains(t, text, "  resume: Go developer with ten years of experience building distribut...\n")
	assert.Contains(t, text, "  matched: 2, missing: 1\n")

	out.Reset()
	printHistory(&out, nil)
	assert.Equal(t, "No analyses yet\n", out.String())
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap channel.Snapshot
		want string
	}{
		{name: "idle", snap: channel.Snapshot{State: channel.StateIdle}, want: "empty"},
		{name: "busy", snap: channel.Snapshot{State: channel.StateBusy, Selected: "cv.pdf"}, want: "processing cv.pdf..."},
		{name: "error", snap: channel.Snapshot{State: channel.StateError, Err: validation.ErrFileTooLarge}, want: "error: File size must be less than 10MB"},
		{name: "file", snap: channel.Snapshot{State: channel.StateReady, Selected: "cv.txt", Text: "Go"}, want: "cv.txt (2 chars)"},
		{name: "pasted", snap: channel.Snapshot{State: channel.StateReady, Text: " Go developer "}, want: "pasted (12 chars)"},
		{name: "pasted blank", snap: channel.Snapshot{State: channel.StateReady, Text: "  "}, want: "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, describe(tt.snap))
		})
	}
}
