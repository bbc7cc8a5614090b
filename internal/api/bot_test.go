package telegram

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	app "tagger-bot/internal/application"
	"tagger-bot/internal/domain/entity"
)

// fakeTagging запоминает входы сценариев
type fakeTagging struct {
	mu        sync.Mutex
	inputs    []app.ResolveInput
	recognize func(ctx context.Context, in app.ResolveInput) (string, error)
	records   map[uint64]*entity.HistoryRecord
	viewErr   error
}

func (f *fakeTagging) Recognize(ctx context.Context, in app.ResolveInput) (string, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()
	return f.recognize(ctx, in)
}

func (f *fakeTagging) ViewResult(_ context.Context, id uint64) (*entity.HistoryRecord, error) {
	if f.viewErr != nil {
		return nil, f.viewErr
	}
	return f.records[id], nil
}

func (f *fakeTagging) lastInput(t *testing.T) app.ResolveInput {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.inputs)
	return f.inputs[len(f.inputs)-1]
}

func newTestHandler(s *fakeSender, tagging *fakeTagging) *handler {
	converter := newTestConverter()
	return &handler{
		sender:    s,
		converter: converter,
		dialogs:   newDialogs(s, converter.Convert),
		tagging:   tagging,
		botName:   "TaggerBot",
		log:       zap.NewNop(),
	}
}

func commandMessage(id int, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: id,
		From:      &tgbotapi.User{ID: conv.UserID},
		Chat:      &tgbotapi.Chat{ID: conv.ChatID},
		Text:      text,
	}
}

func echoSource(_ context.Context, in app.ResolveInput) (string, error) {
	switch {
	case in.Attachment != nil:
		return "attachment " + in.Attachment.Src, nil
	case in.Quote != nil:
		image, _ := in.Quote.FirstImage()
		return "quote " + image.Src, nil
	default:
		return "prompt", nil
	}
}

func TestHandler_RecognizeWithLink(t *testing.T) {
	s := &fakeSender{}
	tagging := &fakeTagging{recognize: echoSource}
	h := newTestHandler(s, tagging)

	h.handleMessage(context.Background(), commandMessage(5, "/rec https://example.com/a.png"))
	h.wait()

	assert.Equal(t, []string{"attachment https://example.com/a.png"}, s.texts())
	assert.Equal(t, 5, s.sent[0].ReplyToMessageID)
	assert.Equal(t, conv, tagging.lastInput(t).Conversation)
}

func TestHandler_RecognizePhotoBeatsQuote(t *testing.T) {
	s := &fakeSender{}
	h := newTestHandler(s, &fakeTagging{recognize: echoSource})

	msg := commandMessage(6, "")
	msg.Caption = "/tagger rec"
	msg.Photo = []tgbotapi.PhotoSize{{FileID: "photo"}}
	msg.ReplyToMessage = &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "quoted"}}}

	h.handleMessage(context.Background(), msg)
	h.wait()

	assert.Equal(t, []string{"attachment https://files.example.com/photo"}, s.texts())
}

func TestHandler_BrokenPhotoDoesNotFallBackToQuote(t *testing.T) {
	s := &fakeSender{}
	tagging := &fakeTagging{recognize: echoSource}
	h := newTestHandler(s, tagging)

	msg := commandMessage(17, "")
	msg.Caption = "/rec"
	msg.Photo = []tgbotapi.PhotoSize{{FileID: "broken"}}
	msg.ReplyToMessage = &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "quoted"}}}

	h.handleMessage(context.Background(), msg)
	h.wait()

	assert.Equal(t, []string{msgFailed}, s.texts())
	tagging.mu.Lock()
	assert.Empty(t, tagging.inputs)
	tagging.mu.Unlock()
}

func TestHandler_RecognizeQuote(t *testing.T) {
	s := &fakeSender{}
	h := newTestHandler(s, &fakeTagging{recognize: echoSource})

	msg := commandMessage(7, "/tagger.rec")
	msg.ReplyToMessage = &tgbotapi.Message{Text: "nice", Photo: []tgbotapi.PhotoSize{{FileID: "quoted"}}}

	h.handleMessage(context.Background(), msg)
	h.wait()

	assert.Equal(t, []string{"quote https://files.example.com/quoted"}, s.texts())
}

func TestHandler_RecognizeTextArgument(t *testing.T) {
	s := &fakeSender{}
	tagging := &fakeTagging{recognize: echoSource}
	h := newTestHandler(s, tagging)

	h.handleMessage(context.Background(), commandMessage(8, "/rec cat"))
	h.wait()

	in := tagging.lastInput(t)
	require.NotNil(t, in.Attachment)
	assert.Equal(t, entity.ElementText, in.Attachment.Type)
}

func TestHandler_PromptAnsweredByNextMessage(t *testing.T) {
	s := &fakeSender{}
	var h *handler
	tagging := &fakeTagging{
		recognize: func(ctx context.Context, in app.ResolveInput) (string, error) {
			outcome, err := h.dialogs.Prompt(ctx, in.Conversation, "Please send an image within 30 seconds", time.Second)
			if err != nil {
				return "", err
			}
			if outcome.TimedOut {
				return "", entity.ErrTimeout
			}
			image, ok := outcome.Message.FirstImage()
			if !ok {
				return "", entity.ErrNotAnImage
			}
			return "tagged " + image.Src, nil
		},
	}
	h = newTestHandler(s, tagging)
	ctx := context.Background()

	h.handleMessage(ctx, commandMessage(9, "/rec"))
	require.Eventually(t, func() bool { return h.dialogs.waiting(conv) }, time.Second, 5*time.Millisecond)

	answer := commandMessage(10, "")
	answer.Photo = []tgbotapi.PhotoSize{{FileID: "answer"}}
	h.handleMessage(ctx, answer)
	h.wait()

	assert.Equal(t, []string{
		"Please send an image within 30 seconds",
		"tagged https://files.example.com/answer",
	}, s.texts())
}

func TestHandler_RecognizeErrors(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: fmt.Errorf("resolve image: %w", entity.ErrNotAnImage), want: "This does not look like an image."},
		{err: entity.ErrTimeout, want: "Timed out."},
		{err: entity.ErrBusy, want: msgBusy},
		{err: fmt.Errorf("tag image: %w", entity.ErrMalformedResponse), want: "Recognition failed, please try again later."},
	}

	for _, tt := range tests {
		s := &fakeSender{}
		h := newTestHandler(s, &fakeTagging{recognize: func(context.Context, app.ResolveInput) (string, error) {
			return "", tt.err
		}})

		h.handleMessage(context.Background(), commandMessage(11, "/rec"))
		h.wait()

		assert.Equal(t, []string{tt.want}, s.texts())
	}
}

func TestHandler_ViewResults(t *testing.T) {
	tagging := &fakeTagging{records: map[uint64]*entity.HistoryRecord{
		3: {ID: 3, UserID: "7", Content: "Tags:\n1girl"},
	}}

	tests := []struct {
		text string
		want string
	}{
		{text: "/view_results 3", want: "Tags:\n1girl"},
		{text: "/tagger view-results 4", want: "Result #4 not found."},
		{text: "/view-results", want: msgViewUsage},
		{text: "/view-results 0", want: msgViewUsage},
		{text: "/view-results -1", want: msgViewUsage},
		{text: "/view-results abc", want: msgViewUsage},
	}

	for _, tt := range tests {
		s := &fakeSender{}
		h := newTestHandler(s, tagging)

		h.handleMessage(context.Background(), commandMessage(12, tt.text))
		h.wait()

		assert.Equal(t, []string{tt.want}, s.texts(), tt.text)
	}
}

func TestHandler_ViewResultsDisabled(t *testing.T) {
	s := &fakeSender{}
	h := newTestHandler(s, &fakeTagging{viewErr: entity.ErrHistoryDisabled})

	h.handleMessage(context.Background(), commandMessage(13, "/view_results 1"))
	h.wait()

	assert.Equal(t, []string{"History is disabled."}, s.texts())
}

func TestHandler_HelpAndIgnored(t *testing.T) {
	s := &fakeSender{}
	h := newTestHandler(s, &fakeTagging{})
	ctx := context.Background()

	h.handleMessage(ctx, commandMessage(14, "/tagger"))
	h.handleMessage(ctx, commandMessage(15, "just chatting"))
	h.handleMessage(ctx, commandMessage(16, "/rec@OtherBot"))
	h.handleMessage(ctx, &tgbotapi.Message{Text: "/help"})
	h.wait()

	assert.Equal(t, []string{msgHelp}, s.texts())
}
