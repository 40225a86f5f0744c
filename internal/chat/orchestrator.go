package chat

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/cherseta/chersey/internal/llm"
	"github.com/cherseta/chersey/internal/logger"
	"github.com/cherseta/chersey/internal/store"
)

// ErrOffline is returned when no text-generation provider is configured.
var ErrOffline = errors.New("chat provider offline")

// OfflineMessage is the reply sent to clients while the provider is offline.
const OfflineMessage = "AI Assistant is offline."

// Store is the subset of the document store the orchestrator needs.
type Store interface {
	GetProject(ctx context.Context, uid, id string) (*store.Project, error)
	ListChats(ctx context.Context, uid, projectID string) ([]store.ChatMessage, error)
	AppendChat(ctx context.Context, uid, projectID, role, text string) error
}

// Frame is one unit of streamed output: a text increment, or a terminal error.
type Frame struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// StreamReply sends history plus one user turn carrying the rules, context
// and question, and yields non-empty text increments as they arrive.
func StreamReply(ctx context.Context, client llm.Streamer, history []store.ChatMessage, contextText, message string) iter.Seq2[string, error] {
	msgs := make([]llm.Message, 0, len(history)+1)
	for _, h := range history {
		role := llm.RoleModel
		if h.Role == store.RoleUser {
			role = llm.RoleUser
		}
		msgs = append(msgs, llm.Message{Role: role, Text: h.Text})
	}
	msgs = append(msgs, llm.Message{
		Role: llm.RoleUser,
		Text: llm.ChatTurn(llm.ChatSystemRules, contextText, message),
	})

	return func(yield func(string, error) bool) {
		for text, err := range client.Stream(ctx, llm.Request{Messages: msgs}) {
			if err != nil {
				yield("", err)
				return
			}
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

// Orchestrator runs a chat turn against a project: context assembly,
// streaming, and persistence of the exchange.
type Orchestrator struct {
	store   Store
	client  *llm.Lazy[llm.Streamer]
	log     logger.Logger
	timeout time.Duration
}

// NewOrchestrator creates an Orchestrator. A zero timeout means no limit
// beyond the caller's context.
func NewOrchestrator(s Store, client *llm.Lazy[llm.Streamer], log logger.Logger, timeout time.Duration) *Orchestrator {
	return &Orchestrator{store: s, client: client, log: log, timeout: timeout}
}

// Turn is a prepared chat turn, ready to stream.
type Turn struct {
	o         *Orchestrator
	client    llm.Streamer
	uid       string
	projectID string
	message   string
	context   string
	history   []store.ChatMessage
}

// Prepare resolves the provider, loads the project and history, and builds
// the context. It returns ErrOffline before touching the store when no
// provider is configured, and store.ErrNotFound for an unknown project.
func (o *Orchestrator) Prepare(ctx context.Context, uid, projectID, message string, selected []string) (*Turn, error) {
	client, err := o.client.Get()
	if err != nil {
		if !errors.Is(err, llm.ErrUnavailable) {
			o.log.Error("chat provider init failed", logger.Error(err))
		}
		return nil, ErrOffline
	}

	project, err := o.store.GetProject(ctx, uid, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	history, err := o.store.ListChats(ctx, uid, projectID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	return &Turn{
		o:         o,
		client:    client,
		uid:       uid,
		projectID: projectID,
		message:   message,
		context:   BuildContext(project.Sources, selected),
		history:   history,
	}, nil
}

// Stream emits each text increment, then persists the user message and the
// full reply. On a provider error it emits one terminal error frame, persists
// nothing, and returns the error. Persistence failures are logged only.
func (t *Turn) Stream(ctx context.Context, emit func(Frame) error) error {
	if t.o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.o.timeout)
		defer cancel()
	}

	var reply strings.Builder
	for text, err := range StreamReply(ctx, t.client, t.history, t.context, t.message) {
		if err != nil {
			t.o.log.Warn("chat stream failed",
				logger.String("uid", t.uid),
				logger.String("project", t.projectID),
				logger.Error(err))
			if emitErr := emit(Frame{Error: err.Error()}); emitErr != nil {
				t.o.log.Debug("error frame not delivered", logger.Error(emitErr))
			}
			return fmt.Errorf("stream reply: %w", err)
		}
		reply.WriteString(text)
		if err := emit(Frame{Text: text}); err != nil {
			return fmt.Errorf("emit frame: %w", err)
		}
	}

	t.persist(context.WithoutCancel(ctx), reply.String())
	return nil
}

func (t *Turn) persist(ctx context.Context, reply string) {
	if err := t.o.store.AppendChat(ctx, t.uid, t.projectID, store.RoleUser, t.message); err != nil {
		t.o.log.Error("save user message failed",
			logger.String("uid", t.uid), logger.String("project", t.projectID), logger.Error(err))
	}
	if err := t.o.store.AppendChat(ctx, t.uid, t.projectID, store.RoleModel, reply); err != nil {
		t.o.log.Error("save model reply failed",
			logger.String("uid", t.uid), logger.String("project", t.projectID), logger.Error(err))
	}
}

// Reply prepares and streams a turn in one call.
func (o *Orchestrator) Reply(ctx context.Context, uid, projectID, message string, selected []string, emit func(Frame) error) error {
	turn, err := o.Prepare(ctx, uid, projectID, message, selected)
	if err != nil {
		return err
	}
	return turn.Stream(ctx, emit)
}
