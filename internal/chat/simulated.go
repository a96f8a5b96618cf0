package chat

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

// cannedReplies is the fixed set a simulated support agent picks from.
var cannedReplies = []string{
	"Thanks for reaching out. Our team is reviewing your message and will get back to you shortly.",
	"We have registered your question. A support agent will follow up within one business day.",
	"Could you share a few more details? That helps us route your case to the right team.",
	"Your case has been escalated to the supplier. We will update this thread as soon as we hear back.",
	"Thanks for the additional information. We are on it.",
}

// SimulatedChannel keeps threads in memory and answers each user message
// with one canned reply after a fixed delay. Used in development and demos
// where no support backend is connected.
type SimulatedChannel struct {
	ctx        context.Context
	replyDelay time.Duration
	rng        *rand.Rand

	mu       sync.Mutex
	messages map[string][]domain.ChatMessage
	docs     map[string][]domain.ChatDocument
}

// NewSimulatedChannel builds a simulated channel. Pending auto-replies are
// dropped when ctx ends.
func NewSimulatedChannel(ctx context.Context, replyDelay time.Duration) *SimulatedChannel {
	return &SimulatedChannel{
		ctx:        ctx,
		replyDelay: replyDelay,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		messages:   make(map[string][]domain.ChatMessage),
		docs:       make(map[string][]domain.ChatDocument),
	}
}

func (c *SimulatedChannel) History(ctx context.Context, parentID string) ([]domain.ChatMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.ChatMessage, len(c.messages[parentID]))
	copy(out, c.messages[parentID])
	return out, nil
}

func (c *SimulatedChannel) Send(ctx context.Context, parentID, authorID, body string) (domain.ChatMessage, error) {
	msg := domain.ChatMessage{
		ID:        uuid.New().String(),
		ParentID:  parentID,
		Sender:    domain.SenderUser,
		Body:      body,
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}

	c.mu.Lock()
	c.messages[parentID] = append(c.messages[parentID], msg)
	reply := cannedReplies[c.rng.Intn(len(cannedReplies))]
	c.mu.Unlock()

	go c.scheduleReply(parentID, reply)

	return msg, nil
}

// scheduleReply appends one support reply after the configured delay unless
// the channel context ends first.
func (c *SimulatedChannel) scheduleReply(parentID, reply string) {
	timer := time.NewTimer(c.replyDelay)
	defer timer.Stop()

	select {
	case <-c.ctx.Done():
		return
	case <-timer.C:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[parentID] = append(c.messages[parentID], domain.ChatMessage{
		ID:        uuid.New().String(),
		ParentID:  parentID,
		Sender:    domain.SenderSupport,
		Body:      reply,
		CreatedAt: time.Now(),
	})
}

func (c *SimulatedChannel) AttachDocument(ctx context.Context, parentID, authorID string, att Attachment) (domain.ChatDocument, error) {
	if err := validateAttachment(att); err != nil {
		return domain.ChatDocument{}, err
	}

	doc := domain.ChatDocument{
		ID:          uuid.New().String(),
		ParentID:    parentID,
		Name:        att.Name,
		StoragePath: fmt.Sprintf("%s/%d_%s", parentID, time.Now().UnixMilli(), att.Name),
		SizeBytes:   att.SizeBytes,
		ContentType: "application/pdf",
		CreatedAt:   time.Now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[parentID] = append([]domain.ChatDocument{doc}, c.docs[parentID]...)
	c.messages[parentID] = append(c.messages[parentID], domain.ChatMessage{
		ID:        uuid.New().String(),
		ParentID:  parentID,
		Sender:    domain.SenderSystem,
		Body:      fmt.Sprintf("Document attached: %s", att.Name),
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	})

	return doc, nil
}

func (c *SimulatedChannel) Documents(ctx context.Context, parentID string) ([]domain.ChatDocument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.ChatDocument, len(c.docs[parentID]))
	copy(out, c.docs[parentID])
	return out, nil
}

func (c *SimulatedChannel) DocumentURL(doc domain.ChatDocument) string {
	return fmt.Sprintf("simulated://%s", doc.StoragePath)
}
