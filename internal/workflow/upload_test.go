package workflow

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/deixis/crashsym/internal/logger"
	"github.com/deixis/crashsym/internal/report"
	"github.com/deixis/crashsym/internal/runner"
	"github.com/deixis/crashsym/internal/workflow/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testJar   = "/tools/buildtools.jar"
	testCache = "/cache/run/nativeSymbols/1-123-android-abc/breakpad"
	testApp   = "1:123:android:abc"
)

func generateArgv(file string) []string {
	inv := Invocation{ToolPath: testJar, Generator: Breakpad, CachePath: testCache, Mode: Generate, SymbolFile: file}
	return append([]string{"java"}, inv.Args()...)
}

func uploadArgv() []string {
	inv := Invocation{ToolPath: testJar, Generator: Breakpad, CachePath: testCache, Mode: Upload, AppID: testApp}
	return append([]string{"java"}, inv.Args()...)
}

func ok(stdout string) *runner.Result {
	return &runner.Result{Stdout: []byte(stdout)}
}

func testPlan(dryRun bool, files ...string) Plan {
	return Plan{
		Config:    RunConfig{AppID: testApp, Generator: Breakpad, DryRun: dryRun},
		ToolPath:  testJar,
		CachePath: testCache,
		Files:     files,
	}
}

func newTestEngine(t *testing.T) (*Engine, *mocks.MockCommandRunner, *bytes.Buffer) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockCommandRunner(ctrl)
	var buf bytes.Buffer
	return &Engine{Runner: r, Log: logger.NewPlain(&buf, false)}, r, &buf
}

func TestUpload_AllSucceed(t *testing.T) {
	e, r, buf := newTestEngine(t)

	gomock.InOrder(
		r.EXPECT().Run(gomock.Any(), generateArgv("a.so"), false).Return(ok("Generated symbol file at /cache/a.sym\n"), nil),
		r.EXPECT().Run(gomock.Any(), generateArgv("b.so"), false).Return(ok(""), nil),
		r.EXPECT().Run(gomock.Any(), uploadArgv(), false).Return(ok("Crashlytics symbol file uploaded successfully\n"), nil),
	)

	rr, err := e.Upload(context.Background(), testPlan(false, "a.so", "b.so"))
	require.NoError(t, err)
	require.Len(t, rr.Steps, 3)
	assert.Nil(t, rr.Failed())
	assert.True(t, rr.Uploaded())
	assert.Equal(t, "Generated symbol file at /cache/a.sym", rr.Steps[0].Message)
	assert.Equal(t, "", rr.Steps[1].Message)
	assert.Equal(t, testCache, rr.CachePath)

	out := buf.String()
	assert.Contains(t, out, "Generating symbols for a.so")
	assert.Contains(t, out, "Generated symbol file at /cache/a.sym")
	assert.Contains(t, out, "Generated symbols for b.so")
	assert.Contains(t, out, "Output Path: "+testCache)
	assert.Contains(t, out, "Uploading all generated symbols...")
	assert.Contains(t, out, "Crashlytics symbol file uploaded successfully")
	assert.Contains(t, out, "Successfully uploaded all symbols")
	assert.NotContains(t, out, "Generated symbols for a.so")
}

func TestUpload_StopsOnFirstFailure(t *testing.T) {
	e, r, buf := newTestEngine(t)

	gomock.InOrder(
		r.EXPECT().Run(gomock.Any(), generateArgv("one.so"), false).Return(ok(""), nil),
		r.EXPECT().Run(gomock.Any(), generateArgv("two.so"), false).Return(&runner.Result{ExitCode: 1, Stdout: []byte("bad library")}, nil),
	)

	rr, err := e.Upload(context.Background(), testPlan(false, "one.so", "two.so", "three.so"))
	require.Error(t, err)

	var toolErr *ToolExecutionError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, Generate, toolErr.Mode)
	assert.Equal(t, "two.so", toolErr.SymbolFile)
	assert.Equal(t, 1, toolErr.ExitCode)

	require.NotNil(t, rr)
	require.Len(t, rr.Steps, 4)
	assert.Equal(t, report.StatusOK, rr.Steps[0].Status)
	assert.Equal(t, report.StatusFailed, rr.Steps[1].Status)
	assert.Equal(t, "bad library", rr.Steps[1].Output)
	assert.Equal(t, report.StatusSkipped, rr.Steps[2].Status)
	assert.Equal(t, report.StatusSkipped, rr.Steps[3].Status)
	assert.Equal(t, Upload, rr.Steps[3].Mode)

	out := buf.String()
	assert.Contains(t, out, "bad library")
	assert.NotContains(t, out, "three.so")
	assert.NotContains(t, out, "Uploading all generated symbols")
}

func TestUpload_UnknownErrorWhenNoOutput(t *testing.T) {
	e, r, buf := newTestEngine(t)
	r.EXPECT().Run(gomock.Any(), generateArgv("a.so"), false).Return(&runner.Result{ExitCode: 2}, nil)

	_, err := e.Upload(context.Background(), testPlan(false, "a.so"))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "An unknown error occurred")
}

func TestUpload_UploadFailure(t *testing.T) {
	e, r, _ := newTestEngine(t)
	gomock.InOrder(
		r.EXPECT().Run(gomock.Any(), generateArgv("a.so"), false).Return(ok(""), nil),
		r.EXPECT().Run(gomock.Any(), uploadArgv(), false).Return(&runner.Result{ExitCode: 1, Stdout: []byte("403")}, nil),
	)

	rr, err := e.Upload(context.Background(), testPlan(false, "a.so"))
	var toolErr *ToolExecutionError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, Upload, toolErr.Mode)
	assert.Equal(t, "java failed uploading symbols (exit status 1)", err.Error())
	assert.Equal(t, "upload failed after generating 1 symbol files", rr.Summary())
}

func TestUpload_DryRunNeverUploads(t *testing.T) {
	e, r, buf := newTestEngine(t)
	gomock.InOrder(
		r.EXPECT().Run(gomock.Any(), generateArgv("a.so"), false).Return(ok(""), nil),
		r.EXPECT().Run(gomock.Any(), generateArgv("b.so"), false).Return(ok(""), nil),
	)

	rr, err := e.Upload(context.Background(), testPlan(true, "a.so", "b.so"))
	require.NoError(t, err)
	assert.Len(t, rr.Steps, 2)
	assert.True(t, rr.DryRun)
	assert.False(t, rr.Uploaded())
	assert.Contains(t, buf.String(), "Skipping upload because --dry-run was passed")
	assert.NotContains(t, buf.String(), "Successfully uploaded")
}

func TestUpload_DebugStreams(t *testing.T) {
	e, r, buf := newTestEngine(t)
	p := testPlan(false, "a.so")
	p.Config.Debug = true

	gomock.InOrder(
		r.EXPECT().Run(gomock.Any(), generateArgv("a.so"), true).Return(&runner.Result{Streamed: true}, nil),
		r.EXPECT().Run(gomock.Any(), uploadArgv(), true).Return(&runner.Result{Streamed: true}, nil),
	)

	_, err := e.Upload(context.Background(), p)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Generated symbols for a.so")
	assert.Contains(t, buf.String(), "Successfully uploaded all symbols")
}

func TestUpload_StreamedFailureNoWarning(t *testing.T) {
	e, r, buf := newTestEngine(t)
	p := testPlan(false, "a.so")
	p.Config.Debug = true

	r.EXPECT().Run(gomock.Any(), generateArgv("a.so"), true).Return(&runner.Result{Streamed: true, ExitCode: 1}, nil)

	_, err := e.Upload(context.Background(), p)
	require.Error(t, err)
	assert.NotContains(t, buf.String(), "An unknown error occurred")
}

func TestUpload_RunnerError(t *testing.T) {
	e, r, _ := newTestEngine(t)
	r.EXPECT().Run(gomock.Any(), generateArgv("a.so"), false).Return(nil, errors.New("executing java: boom"))

	rr, err := e.Upload(context.Background(), testPlan(false, "a.so"))
	require.Error(t, err)
	assert.Equal(t, report.StatusFailed, rr.Steps[0].Status)
	assert.Equal(t, "executing java: boom", rr.Steps[0].Message)
}

func TestUpload_CanceledBeforeStep(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// No Run expectation: a canceled run must not start a process.
	_, err := e.Upload(ctx, testPlan(false, "a.so"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpload_ReporterOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockCommandRunner(ctrl)
	rep := mocks.NewMockReporter(ctrl)
	e := &Engine{Runner: r, Log: rep}

	rep.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	r.EXPECT().Run(gomock.Any(), gomock.Any(), false).Return(ok(""), nil).Times(2)
	gomock.InOrder(
		rep.EXPECT().Bullet("Generating symbols for %s", "a.so"),
		rep.EXPECT().Bullet("Generated symbols for %s", "a.so"),
		rep.EXPECT().Bullet("Output Path: %s", testCache),
		rep.EXPECT().Bullet("Uploading all generated symbols..."),
		rep.EXPECT().Success("Successfully uploaded all symbols"),
	)

	_, err := e.Upload(context.Background(), testPlan(false, "a.so"))
	require.NoError(t, err)
}
