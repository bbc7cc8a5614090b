package gradio

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tagger-bot/internal/domain/entity"
)

// stubInspector принимает данные с PNG-сигнатурой
type stubInspector struct{}

func (stubInspector) Inspect(_ context.Context, data []byte) (*entity.ImageInfo, error) {
	if !strings.HasPrefix(string(data), "\x89PNG") {
		return nil, fmt.Errorf("%w: no png signature", entity.ErrNotAnImage)
	}
	return &entity.ImageInfo{MIME: "image/png", Extension: ".png", Width: 1, Height: 1}, nil
}

var fakePNG = []byte("\x89PNG\r\n\x1a\nfake image body")

func newTestTagger(t *testing.T) (*fakeSpace, *Tagger, string) {
	t.Helper()
	f, srv := newFakeSpace(t, fakePNG)
	tagger := NewTagger(newTestClient(srv), DefaultStreamDecoder, stubInspector{}, zap.NewNop())
	tagger.newSession = func() string { return "4b8e3c1e-session" }
	return f, tagger, srv.URL + "/image"
}

func testRequest(imageURL string) entity.TaggingRequest {
	settings := entity.TaggerSettings{
		Model:     entity.DefaultModel,
		General:   entity.Thresholds{Threshold: 0.35},
		Character: entity.Thresholds{Threshold: 0.85},
	}
	return settings.NewRequest(imageURL)
}

func TestTagger_Tag(t *testing.T) {
	f, tagger, imageURL := newTestTagger(t)

	result, err := tagger.Tag(context.Background(), testRequest(imageURL))
	require.NoError(t, err)

	assert.Equal(t, "1girl, solo", result.GeneralTags)
	require.NotNil(t, result.CharacterLabel)
	assert.Equal(t, "hatsune_miku", *result.CharacterLabel)
	assert.Equal(t, "general", result.RatingLabel)
	assert.Len(t, result.RatingConfidences, 2)

	f.inspect(func(f *fakeSpace) {
		assert.Equal(t, []string{"/image", "/upload", "/queue/join", "/queue/data"}, f.calls)
		assert.Equal(t, "4b8e3c1e-session", f.uploadID)
		assert.Equal(t, "4b8e3c1e-session", f.joinBody["session_hash"])
		assert.Equal(t, "4b8e3c1e-session", f.queueHash)
		assert.Equal(t, "image.png", f.uploadName)
		assert.Equal(t, "image/png", f.uploadMIME)
		assert.Equal(t, fakePNG, f.uploadData)

		data, ok := f.joinBody["data"].([]any)
		require.True(t, ok)
		require.Len(t, data, 6)
		assert.Equal(t, "/tmp/gradio/5e1f/image.png", data[0].(map[string]any)["path"])
		assert.Equal(t, string(entity.DefaultModel), data[1])
	})
}

func TestTagger_NotAnImage(t *testing.T) {
	f, tagger, imageURL := newTestTagger(t)
	f.inspect(func(f *fakeSpace) { f.image = []byte("<html>login required</html>") })

	_, err := tagger.Tag(context.Background(), testRequest(imageURL))
	require.ErrorIs(t, err, entity.ErrNotAnImage)

	f.inspect(func(f *fakeSpace) {
		assert.Equal(t, []string{"/image"}, f.calls)
	})
}

func TestTagger_RemoteUnavailable(t *testing.T) {
	for _, step := range []string{"/image", "/upload", "/queue/join", "/queue/data"} {
		t.Run(step, func(t *testing.T) {
			f, tagger, imageURL := newTestTagger(t)
			f.inspect(func(f *fakeSpace) { f.failPath = step })

			_, err := tagger.Tag(context.Background(), testRequest(imageURL))
			require.ErrorIs(t, err, entity.ErrRemoteUnavailable)
		})
	}
}

func TestTagger_MalformedStream(t *testing.T) {
	f, tagger, imageURL := newTestTagger(t)
	f.inspect(func(f *fakeSpace) { f.stream = "data: {\"msg\": \"estimation\"}\n\n" })

	_, err := tagger.Tag(context.Background(), testRequest(imageURL))
	require.ErrorIs(t, err, entity.ErrMalformedResponse)
}

func TestTagger_MalformedOutput(t *testing.T) {
	f, tagger, imageURL := newTestTagger(t)
	lines := strings.Split(sampleStream, "\n")
	lines[4] = `data: {"msg": "process_completed", "output": {"data": ["1girl"]}, "success": true}`
	f.inspect(func(f *fakeSpace) { f.stream = strings.Join(lines, "\n") })

	_, err := tagger.Tag(context.Background(), testRequest(imageURL))
	require.ErrorIs(t, err, entity.ErrMalformedResponse)
}
