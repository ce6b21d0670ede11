package server_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opencode-ai/discode/pkg/types"
)

var _ = Describe("Event-driven mirroring", func() {
	const sessionID = "abc123"

	threadFor := func(sessionID string) string {
		id, ok := tb.Manager.Registry().ThreadFor(sessionID)
		Expect(ok).To(BeTrue())
		return id
	}

	It("should mirror a session into a thread on idle", func() {
		tb.Backend.SeedSession(sessionID, "fix the auth bug", "done, the token check was inverted")
		tb.Source.EmitIdle(sessionID)

		Eventually(func() int {
			return tb.Manager.Registry().Len()
		}, 3*time.Second, 20*time.Millisecond).Should(Equal(1))

		threadID := threadFor(sessionID)
		Expect(tb.Chat.Title(threadID)).To(Equal("fix the auth bug"))

		Eventually(func() []string {
			return tb.Chat.Posts(threadID)
		}, 3*time.Second, 20*time.Millisecond).Should(HaveLen(2))

		posts := tb.Chat.Posts(threadID)
		Expect(posts[0]).To(Equal("**You:**\nfix the auth bug"))
		Expect(posts[1]).To(Equal("**Assistant:**\ndone, the token check was inverted"))
	})

	It("should not repost already mirrored exchanges", func() {
		tb.Backend.SeedSession(sessionID, "first question", "first answer")
		tb.Source.EmitIdle(sessionID)

		Eventually(func() int {
			return tb.Manager.Registry().Len()
		}, 3*time.Second, 20*time.Millisecond).Should(Equal(1))
		threadID := threadFor(sessionID)
		Eventually(func() []string {
			return tb.Chat.Posts(threadID)
		}, 3*time.Second, 20*time.Millisecond).Should(HaveLen(2))

		tb.Source.EmitIdle(sessionID)
		Consistently(func() []string {
			return tb.Chat.Posts(threadID)
		}, 600*time.Millisecond, 50*time.Millisecond).Should(HaveLen(2))

		tb.Backend.SeedSession(sessionID, "second question", "second answer")
		tb.Source.EmitIdle(sessionID)
		Eventually(func() []string {
			return tb.Chat.Posts(threadID)
		}, 3*time.Second, 20*time.Millisecond).Should(HaveLen(4))
	})

	It("should forward replies without echoing them back", func() {
		tb.Backend.SeedSession(sessionID, "open question", "open answer")
		tb.Source.EmitIdle(sessionID)

		Eventually(func() int {
			return tb.Manager.Registry().Len()
		}, 3*time.Second, 20*time.Millisecond).Should(Equal(1))
		threadID := threadFor(sessionID)
		Eventually(func() []string {
			return tb.Chat.Posts(threadID)
		}, 3*time.Second, 20*time.Millisecond).Should(HaveLen(2))

		Expect(tb.Manager.ForwardReply(ctx, threadID, "follow up please", "user-1")).To(Succeed())

		posts := tb.Chat.Posts(threadID)
		Expect(posts).To(HaveLen(3))
		Expect(posts[2]).To(Equal("**Assistant:**\nreply to: follow up please"))

		prompts := tb.Backend.Prompts()
		Expect(prompts).To(HaveLen(1))
		Expect(prompts[0].Model).To(Equal(types.ModelRef{ProviderID: "anthropic", ModelID: "claude-sonnet-4"}))

		// The idle event that follows the reply must not repost the
		// forwarded exchange.
		tb.Source.EmitIdle(sessionID)
		Consistently(func() []string {
			return tb.Chat.Posts(threadID)
		}, 600*time.Millisecond, 50*time.Millisecond).Should(HaveLen(3))
	})

	It("should not repost a webhook-synced exchange on idle", func() {
		tb.Backend.SeedSession(sessionID, "deploy the service", "deployed")

		resp, err := tb.Client.Post(ctx, "/sync/session", types.SyncSessionRequest{
			SessionID: sessionID,
			Title:     "deploy the service",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(201))
		var body types.SyncSessionResponse
		Expect(resp.JSON(&body)).To(Succeed())

		synced, err := tb.Client.Post(ctx, "/sync/message", types.SyncMessageRequest{
			SessionID:        sessionID,
			UserContent:      "deploy the service",
			AssistantContent: "deployed",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(synced.StatusCode).To(Equal(200))
		Expect(tb.Chat.Posts(body.ThreadID)).To(HaveLen(2))

		// A companion process webhook-posts the exchange and the backend
		// then reports idle; the mirror pass must not post it again.
		tb.Source.EmitIdle(sessionID)
		Consistently(func() []string {
			return tb.Chat.Posts(body.ThreadID)
		}, 600*time.Millisecond, 50*time.Millisecond).Should(HaveLen(2))
	})

	It("should unbind on session deletion", func() {
		tb.Backend.SeedSession(sessionID, "short lived", "ok")
		tb.Source.EmitIdle(sessionID)

		Eventually(func() int {
			return tb.Manager.Registry().Len()
		}, 3*time.Second, 20*time.Millisecond).Should(Equal(1))
		threadID := threadFor(sessionID)

		tb.Backend.RemoveSession(sessionID)
		tb.Source.EmitDeleted(sessionID)
		Eventually(func() int {
			return tb.Manager.Registry().Len()
		}, 3*time.Second, 20*time.Millisecond).Should(Equal(0))

		// Late replies to the orphaned thread surface a backend error
		// instead of silently vanishing.
		Expect(tb.Manager.ForwardReply(ctx, threadID, "anyone there?", "user-1")).NotTo(Succeed())
	})
})
