package matching

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/finsarthi/internal/database"
	"github.com/iyunix/finsarthi/internal/domain"
	"github.com/iyunix/finsarthi/internal/repository/chat"
	"github.com/iyunix/finsarthi/internal/repository/user"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

// fakeClock advances one second per reading so orderings are deterministic.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type harness struct {
	db       *gorm.DB
	svc      *Service
	customer *domain.User
	other    *domain.User
	coach    *domain.User
	offline  *domain.User
}

var stores = []string{"memory", "database"}

func newHarness(t *testing.T, store string) *harness {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "finsarthi.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	users := user.NewGormUserRepository(db)
	var chats chat.ChatRepository
	if store == "database" {
		chats = chat.NewChatRepository(db)
	} else {
		chats = chat.NewMemoryChatRepository()
	}

	svc := NewService(chats, users, nopLogger{})
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc.SetClock(clock.Now)

	h := &harness{db: db, svc: svc}
	h.customer = createUser(t, users, domain.RoleCustomer, "Chitra", "chitra@example.com", false)
	h.other = createUser(t, users, domain.RoleCustomer, "Om", "om@example.com", false)
	h.coach = createUser(t, users, domain.RoleCoach, "Kavya", "kavya@example.com", true)
	h.offline = createUser(t, users, domain.RoleCoach, "Farhan", "farhan@example.com", false)
	return h
}

func createUser(t *testing.T, repo user.UserRepository, role domain.UserRole, name, email string, available bool) *domain.User {
	t.Helper()
	u, err := repo.Create(context.Background(), &domain.User{
		Role:        role,
		Name:        name,
		Email:       &email,
		Password:    "not-a-real-hash",
		IsAvailable: available,
	})
	require.NoError(t, err)
	return u
}

func (h *harness) accepted(t *testing.T) *domain.ChatRequest {
	t.Helper()
	ctx := context.Background()
	req, _, err := h.svc.CreateChatRequest(ctx, h.customer.ID, h.coach.ID)
	require.NoError(t, err)
	req, err = h.svc.UpdateChatRequestStatus(ctx, h.coach.ID, req.ID, domain.StatusAccepted)
	require.NoError(t, err)
	return req
}

func forEachStore(t *testing.T, fn func(t *testing.T, h *harness)) {
	for _, store := range stores {
		t.Run(store, func(t *testing.T) {
			fn(t, newHarness(t, store))
		})
	}
}

func TestCreateChatRequestReturnsExistingWhilePending(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		ctx := context.Background()

		first, created, err := h.svc.CreateChatRequest(ctx, h.customer.ID, h.coach.ID)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, domain.StatusPending, first.Status)

		second, created, err := h.svc.CreateChatRequest(ctx, h.customer.ID, h.coach.ID)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)

		mine, err := h.svc.GetChatRequestsForCustomer(ctx, h.customer.ID)
		require.NoError(t, err)
		assert.Len(t, mine, 1)
	})
}

func TestCreateChatRequestRules(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		ctx := context.Background()

		_, _, err := h.svc.CreateChatRequest(ctx, h.customer.ID, h.customer.ID)
		assert.ErrorIs(t, err, ErrSelfRequest)

		_, _, err = h.svc.CreateChatRequest(ctx, h.customer.ID, h.other.ID)
		assert.ErrorIs(t, err, ErrCoachNotFound)

		_, _, err = h.svc.CreateChatRequest(ctx, h.customer.ID, 9999)
		assert.ErrorIs(t, err, ErrCoachNotFound)

		_, _, err = h.svc.CreateChatRequest(ctx, h.customer.ID, h.offline.ID)
		assert.ErrorIs(t, err, ErrCoachUnavailable)

		_, _, err = h.svc.CreateChatRequest(ctx, h.coach.ID, h.offline.ID)
		assert.ErrorIs(t, err, ErrNotCustomer)
	})
}

func TestUnavailableCoachStillReturnsOpenRequest(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		ctx := context.Background()

		req, _, err := h.svc.CreateChatRequest(ctx, h.customer.ID, h.coach.ID)
		require.NoError(t, err)
		require.NoError(t, h.svc.SetCoachAvailability(ctx, h.coach.ID, false))

		again, created, err := h.svc.CreateChatRequest(ctx, h.customer.ID, h.coach.ID)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, req.ID, again.ID)
	})
}

func TestAcceptShowsActiveSessionToBothParties(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		req := h.accepted(t)
		assert.Equal(t, domain.StatusAccepted, req.Status)

		incoming, err := h.svc.GetChatRequestsForCoach(ctx, h.coach.ID)
		require.NoError(t, err)
		require.Len(t, incoming, 1)
		assert.NotEqual(t, domain.StatusPending, incoming[0].Status)
		assert.Equal(t, "Chitra", incoming[0].Customer.Name)

		for _, id := range []uint{h.customer.ID, h.coach.ID} {
			session, err := h.svc.GetActiveChatSession(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, session)
			assert.Equal(t, req.ID, session.Request.ID)
			require.NotNil(t, session.Partner)
		}

		session, err := h.svc.GetActiveChatSession(ctx, h.customer.ID)
		require.NoError(t, err)
		assert.Equal(t, h.coach.ID, session.Partner.ID)

		none, err := h.svc.GetActiveChatSession(ctx, h.other.ID)
		require.NoError(t, err)
		assert.Nil(t, none)
	})
}

func TestDeclineAllowsNewRequest(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		ctx := context.Background()

		req, _, err := h.svc.CreateChatRequest(ctx, h.customer.ID, h.coach.ID)
		require.NoError(t, err)
		_, err = h.svc.UpdateChatRequestStatus(ctx, h.coach.ID, req.ID, domain.StatusDeclined)
		require.NoError(t, err)

		incoming, err := h.svc.GetChatRequestsForCoach(ctx, h.coach.ID)
		require.NoError(t, err)
		for _, r := range incoming {
			assert.NotEqual(t, domain.StatusPending, r.Status)
		}

		next, created, err := h.svc.CreateChatRequest(ctx, h.customer.ID, h.coach.ID)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, req.ID, next.ID)

		mine, err := h.svc.GetChatRequestsForCustomer(ctx, h.customer.ID)
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, next.ID, mine[0].ID, "newest first")
		require.NotNil(t, mine[0].Coach)
		assert.Equal(t, "Kavya", mine[0].Coach.Name)
	})
}

func TestClosedRequestDoesNotBlockNewRequest(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		req := h.accepted(t)

		_, err := h.svc.UpdateChatRequestStatus(ctx, h.customer.ID, req.ID, domain.StatusClosed)
		require.NoError(t, err)

		next, created, err := h.svc.CreateChatRequest(ctx, h.customer.ID, h.coach.ID)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, req.ID, next.ID)
	})
}

func TestIllegalTransitionsAreRejected(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		ctx := context.Background()

		req, _, err := h.svc.CreateChatRequest(ctx, h.customer.ID, h.coach.ID)
		require.NoError(t, err)

		_, err = h.svc.UpdateChatRequestStatus(ctx, h.customer.ID, req.ID, domain.StatusAccepted)
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = h.svc.UpdateChatRequestStatus(ctx, h.coach.ID, req.ID, domain.StatusClosed)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		_, err = h.svc.UpdateChatRequestStatus(ctx, h.coach.ID, req.ID, domain.StatusPending)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		_, err = h.svc.UpdateChatRequestStatus(ctx, h.other.ID, req.ID, domain.StatusClosed)
		assert.ErrorIs(t, err, ErrNotParticipant)

		_, err = h.svc.UpdateChatRequestStatus(ctx, h.coach.ID, 9999, domain.StatusAccepted)
		assert.ErrorIs(t, err, ErrRequestNotFound)

		_, err = h.svc.UpdateChatRequestStatus(ctx, h.coach.ID, req.ID, domain.StatusAccepted)
		require.NoError(t, err)

		_, err = h.svc.UpdateChatRequestStatus(ctx, h.coach.ID, req.ID, domain.StatusDeclined)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		_, err = h.svc.UpdateChatRequestStatus(ctx, h.coach.ID, req.ID, domain.StatusClosed)
		require.NoError(t, err)

		_, err = h.svc.UpdateChatRequestStatus(ctx, h.coach.ID, req.ID, domain.StatusAccepted)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestUnreadCountWorkedExample(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		req := h.accepted(t)

		_, err := h.svc.SendMessage(ctx, h.customer.ID, req.ID, "hello")
		require.NoError(t, err)

		unread, err := h.svc.GetUnreadMessageCountForUser(ctx, h.coach.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, unread)

		own, err := h.svc.GetUnreadMessageCountForUser(ctx, h.customer.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, own)

		marked, err := h.svc.MarkMessagesAsRead(ctx, h.coach.ID, req.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, marked)

		unread, err = h.svc.GetUnreadMessageCountForUser(ctx, h.coach.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, unread)
	})
}

func TestUnreadCountOnlyCoversAcceptedChats(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		req := h.accepted(t)

		_, err := h.svc.SendMessage(ctx, h.coach.ID, req.ID, "Namaste! How can I help?")
		require.NoError(t, err)
		_, err = h.svc.UpdateChatRequestStatus(ctx, h.coach.ID, req.ID, domain.StatusClosed)
		require.NoError(t, err)

		unread, err := h.svc.GetUnreadMessageCountForUser(ctx, h.customer.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, unread)
	})
}

func TestSendMessageRules(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		ctx := context.Background()

		pending, _, err := h.svc.CreateChatRequest(ctx, h.customer.ID, h.coach.ID)
		require.NoError(t, err)
		_, err = h.svc.SendMessage(ctx, h.customer.ID, pending.ID, "anyone there?")
		assert.ErrorIs(t, err, ErrChatNotActive)

		_, err = h.svc.UpdateChatRequestStatus(ctx, h.coach.ID, pending.ID, domain.StatusAccepted)
		require.NoError(t, err)

		_, err = h.svc.SendMessage(ctx, h.customer.ID, pending.ID, "   \n")
		assert.ErrorIs(t, err, ErrEmptyMessage)

		_, err = h.svc.SendMessage(ctx, h.customer.ID, pending.ID, strings.Repeat("₹", MaxMessageLength+1))
		assert.ErrorIs(t, err, ErrMessageTooLong)

		_, err = h.svc.SendMessage(ctx, h.other.ID, pending.ID, "hi")
		assert.ErrorIs(t, err, ErrNotParticipant)

		msg, err := h.svc.SendMessage(ctx, h.customer.ID, pending.ID, "  what is an SIP?  ")
		require.NoError(t, err)
		assert.Equal(t, "what is an SIP?", msg.Content)
		assert.False(t, msg.IsRead)
	})
}

func TestMessagesAreReturnedOldestFirst(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		req := h.accepted(t)

		for _, m := range []struct {
			from    uint
			content string
		}{
			{h.customer.ID, "hello"},
			{h.coach.ID, "Hi Chitra"},
			{h.customer.ID, "How much should I save?"},
		} {
			_, err := h.svc.SendMessage(ctx, m.from, req.ID, m.content)
			require.NoError(t, err)
		}

		msgs, err := h.svc.GetMessagesForChat(ctx, h.coach.ID, req.ID)
		require.NoError(t, err)

		got := make([]string, 0, len(msgs))
		for _, m := range msgs {
			got = append(got, m.Content)
		}
		want := []string{"hello", "Hi Chitra", "How much should I save?"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("messages mismatch (-want +got):\n%s", diff)
		}

		_, err = h.svc.GetMessagesForChat(ctx, h.other.ID, req.ID)
		assert.ErrorIs(t, err, ErrNotParticipant)

		_, err = h.svc.MarkMessagesAsRead(ctx, h.other.ID, req.ID)
		assert.ErrorIs(t, err, ErrNotParticipant)
	})
}

func TestConcurrentCreateYieldsOneRequest(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		const workers = 8

		var wg sync.WaitGroup
		ids := make([]uint, workers)
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				req, _, err := h.svc.CreateChatRequest(ctx, h.customer.ID, h.coach.ID)
				errs[i] = err
				if err == nil {
					ids[i] = req.ID
				}
			}(i)
		}
		wg.Wait()

		for i := range ids {
			require.NoError(t, errs[i])
			assert.Equal(t, ids[0], ids[i])
		}
		mine, err := h.svc.GetChatRequestsForCustomer(ctx, h.customer.ID)
		require.NoError(t, err)
		assert.Len(t, mine, 1)
	})
}

func TestCoachListDropsRequestsWithMissingCustomer(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		ctx := context.Background()

		_, _, err := h.svc.CreateChatRequest(ctx, h.customer.ID, h.coach.ID)
		require.NoError(t, err)
		_, _, err = h.svc.CreateChatRequest(ctx, h.other.ID, h.coach.ID)
		require.NoError(t, err)

		require.NoError(t, h.db.Delete(&domain.User{}, h.other.ID).Error)

		incoming, err := h.svc.GetChatRequestsForCoach(ctx, h.coach.ID)
		require.NoError(t, err)
		require.Len(t, incoming, 1)
		assert.Equal(t, h.customer.ID, incoming[0].Customer.ID)
	})
}

func TestCoachAvailability(t *testing.T) {
	forEachStore(t, func(t *testing.T, h *harness) {
		ctx := context.Background()

		coaches, err := h.svc.ListAvailableCoaches(ctx)
		require.NoError(t, err)
		require.Len(t, coaches, 1)
		assert.Equal(t, "Kavya", coaches[0].Name)

		require.NoError(t, h.svc.SetCoachAvailability(ctx, h.offline.ID, true))
		coaches, err = h.svc.ListAvailableCoaches(ctx)
		require.NoError(t, err)
		require.Len(t, coaches, 2)
		assert.Equal(t, "Farhan", coaches[0].Name)

		assert.ErrorIs(t, h.svc.SetCoachAvailability(ctx, h.customer.ID, true), ErrNotCoach)
	})
}
