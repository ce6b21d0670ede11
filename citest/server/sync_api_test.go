package server_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opencode-ai/discode/pkg/types"
)

var _ = Describe("Sync API", func() {
	Describe("GET /health", func() {
		It("should report ok", func() {
			resp, err := tb.Client.Get(ctx, "/health")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(200))
			Expect(resp.String()).To(ContainSubstring("ok"))
		})
	})

	Describe("POST /sync/session", func() {
		It("should create a thread and bind the session", func() {
			resp, err := tb.Client.Post(ctx, "/sync/session", types.SyncSessionRequest{
				SessionID: "ses_one",
				Title:     "fix the login bug",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(201))

			var body types.SyncSessionResponse
			Expect(resp.JSON(&body)).To(Succeed())
			Expect(body.ThreadID).NotTo(BeEmpty())
			Expect(body.Existing).To(BeFalse())
			Expect(tb.Chat.Title(body.ThreadID)).To(Equal("fix the login bug"))
		})

		It("should be idempotent for an already bound session", func() {
			first, err := tb.Client.Post(ctx, "/sync/session", types.SyncSessionRequest{SessionID: "ses_one"})
			Expect(err).NotTo(HaveOccurred())
			Expect(first.StatusCode).To(Equal(201))
			var created types.SyncSessionResponse
			Expect(first.JSON(&created)).To(Succeed())

			second, err := tb.Client.Post(ctx, "/sync/session", types.SyncSessionRequest{SessionID: "ses_one"})
			Expect(err).NotTo(HaveOccurred())
			Expect(second.StatusCode).To(Equal(200))
			var existing types.SyncSessionResponse
			Expect(second.JSON(&existing)).To(Succeed())
			Expect(existing.ThreadID).To(Equal(created.ThreadID))
			Expect(existing.Existing).To(BeTrue())
		})

		It("should reject a missing session ID", func() {
			resp, err := tb.Client.Post(ctx, "/sync/session", types.SyncSessionRequest{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(400))
			Expect(resp.String()).To(ContainSubstring("INVALID_REQUEST"))
		})

		It("should enforce the directory allowlist", func() {
			allowed, err := tb.Client.Post(ctx, "/sync/session", types.SyncSessionRequest{
				SessionID: "ses_ok",
				Directory: "/srv/project",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed.StatusCode).To(Equal(201))

			denied, err := tb.Client.Post(ctx, "/sync/session", types.SyncSessionRequest{
				SessionID: "ses_bad",
				Directory: "/home/user/secrets",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(denied.StatusCode).To(Equal(403))
			Expect(denied.String()).To(ContainSubstring("PERMISSION_DENIED"))
		})
	})

	Describe("POST /sync/message", func() {
		var threadID string

		BeforeEach(func() {
			resp, err := tb.Client.Post(ctx, "/sync/session", types.SyncSessionRequest{SessionID: "ses_one"})
			Expect(err).NotTo(HaveOccurred())
			var body types.SyncSessionResponse
			Expect(resp.JSON(&body)).To(Succeed())
			threadID = body.ThreadID
		})

		It("should post an exchange addressed by session", func() {
			resp, err := tb.Client.Post(ctx, "/sync/message", types.SyncMessageRequest{
				SessionID:        "ses_one",
				UserContent:      "deploy the service",
				AssistantContent: "deployed",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(200))

			posts := tb.Chat.Posts(threadID)
			Expect(posts).To(HaveLen(2))
			Expect(posts[0]).To(HavePrefix("**You:**"))
			Expect(posts[1]).To(HavePrefix("**Assistant:**"))
		})

		It("should post an exchange addressed by thread", func() {
			resp, err := tb.Client.Post(ctx, "/sync/message", types.SyncMessageRequest{
				ThreadID:    threadID,
				UserContent: "just the user side",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(200))
			Expect(tb.Chat.Posts(threadID)).To(HaveLen(1))
		})

		It("should return 404 for unknown sessions and threads", func() {
			bySession, err := tb.Client.Post(ctx, "/sync/message", types.SyncMessageRequest{
				SessionID:   "ses_missing",
				UserContent: "hello",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(bySession.StatusCode).To(Equal(404))

			byThread, err := tb.Client.Post(ctx, "/sync/message", types.SyncMessageRequest{
				ThreadID:    "th_missing",
				UserContent: "hello",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(byThread.StatusCode).To(Equal(404))
		})
	})

	Describe("GET /sync/status", func() {
		It("should list the active bindings", func() {
			for _, id := range []string{"ses_a", "ses_b"} {
				resp, err := tb.Client.Post(ctx, "/sync/session", types.SyncSessionRequest{SessionID: id})
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(201))
			}

			resp, err := tb.Client.Get(ctx, "/sync/status")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(200))

			var status types.SyncStatusResponse
			Expect(resp.JSON(&status)).To(Succeed())
			Expect(status.ActiveSessions).To(Equal(2))
			Expect(status.Sessions).To(HaveLen(2))
			Expect(status.Sessions[0].SessionID).To(Equal("ses_a"))
		})
	})
})
