package account_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	account "github.com/goliatone/go-account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLastWriteWinsIgnoresSource(t *testing.T) {
	a := &account.User{ID: "a"}
	b := &account.User{ID: "b"}

	s := account.LastWriteWins(account.SessionState{}, account.SourceReload, b)
	s = account.LastWriteWins(s, account.SourceCurrentUser, a)
	assert.Equal(t, a, s.CurrentUser)

	s = account.LastWriteWins(s, account.SourceSignOut, nil)
	assert.Nil(t, s.CurrentUser)
}

func TestSessionControllerFallsBackToCachedUser(t *testing.T) {
	cached := testUser()
	identity := new(MockIdentity)
	identity.On("ReloadSession", mock.Anything).Return(nil, errors.New("offline"))
	identity.On("GetCurrentUser", mock.Anything).Return(cached)

	c := account.NewSessionController(context.Background(), newTestService(identity, new(MockDirectory)))
	defer c.Close()
	c.Wait()

	assert.Equal(t, cached, c.State().CurrentUser)
	assert.Empty(t, c.State().Error)
}

func TestSessionControllerWritesGoThroughTransition(t *testing.T) {
	fresh := testUser()
	identity := new(MockIdentity)
	directory := new(MockDirectory)
	identity.On("ReloadSession", mock.Anything).Return(fresh, nil)
	directory.On("Upsert", mock.Anything, *fresh).Return(nil)

	var mu sync.Mutex
	var sources []account.SessionSource
	transition := func(s account.SessionState, source account.SessionSource, u *account.User) account.SessionState {
		mu.Lock()
		sources = append(sources, source)
		mu.Unlock()
		return account.LastWriteWins(s, source, u)
	}

	c := account.NewSessionController(context.Background(), newTestService(identity, directory),
		account.WithSessionTransition(transition),
	)
	defer c.Close()
	c.Wait()

	assert.Equal(t, fresh, c.State().CurrentUser)
	mu.Lock()
	assert.ElementsMatch(t, []account.SessionSource{account.SourceCurrentUser, account.SourceReload}, sources)
	mu.Unlock()
}

func TestSessionControllerRefreshAndSignOut(t *testing.T) {
	user := testUser()
	identity := new(MockIdentity)
	directory := new(MockDirectory)
	identity.On("ReloadSession", mock.Anything).Return(user, nil).Times(2)
	identity.On("ReloadSession", mock.Anything).Return(nil, errors.New("token expired"))
	identity.On("SignOut", mock.Anything).Return(nil)
	directory.On("Upsert", mock.Anything, *user).Return(nil)

	c := account.NewSessionController(context.Background(), newTestService(identity, directory))
	defer c.Close()
	c.Wait()
	require.Equal(t, user, c.State().CurrentUser)

	c.Refresh()
	c.Wait()
	assert.False(t, c.State().Refreshing)
	assert.Equal(t, "token expired", c.State().Error)
	assert.Equal(t, user, c.State().CurrentUser, "a failed refresh keeps the user")

	c.ClearError()
	assert.Empty(t, c.State().Error)

	c.SignOut()
	c.Wait()
	assert.True(t, c.State().SignedOut)
	assert.Nil(t, c.State().CurrentUser)
}

func TestSessionControllerObserver(t *testing.T) {
	user := testUser()
	identity := new(MockIdentity)
	identity.On("ReloadSession", mock.Anything).Return(nil, errors.New("offline"))
	identity.On("GetCurrentUser", mock.Anything).Return(nil)

	stream := make(chan *account.User, 1)
	identity.On("ObserveSession", mock.Anything).Return((<-chan *account.User)(stream))

	observed := make(chan *account.User, 1)
	transition := func(s account.SessionState, source account.SessionSource, u *account.User) account.SessionState {
		if source == account.SourceObserver {
			observed <- u
		}
		return account.LastWriteWins(s, source, u)
	}

	c := account.NewSessionController(context.Background(), newTestService(identity, new(MockDirectory)),
		account.WithSessionObserver(),
		account.WithSessionTransition(transition),
	)

	stream <- user
	select {
	case got := <-observed:
		assert.Equal(t, user, got)
	case <-time.After(time.Second):
		t.Fatal("observer write not published")
	}

	close(stream)
	c.Close()
}

func TestDirectoryControllerFiltersLiveSnapshots(t *testing.T) {
	snaps := make(chan account.DirectorySnapshot)
	directory := new(MockDirectory)
	directory.On("ObserveAll", mock.Anything).Return((<-chan account.DirectorySnapshot)(snaps))

	c := account.NewDirectoryController(context.Background(), newTestService(new(MockIdentity), directory),
		account.WithDirectoryLogger(nopLogger{}),
	)
	defer c.Close()

	assert.True(t, c.State().Loading)

	snaps <- account.DirectorySnapshot{Users: directoryFixture()}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	state, err := c.AwaitLoaded(ctx)
	require.NoError(t, err)
	assert.Len(t, state.FilteredUsers, 3)

	c.SetFilter(account.FilterNotVerified)
	assert.Equal(t, []string{"2", "3"}, ids(c.State().FilteredUsers))

	c.SetQuery("carol")
	assert.Equal(t, []string{"3"}, ids(c.State().FilteredUsers))

	snaps <- account.DirectorySnapshot{Users: append(directoryFixture(),
		account.User{ID: "4", Name: "Caroline", Email: "caro@example.com"},
	)}
	assert.Eventually(t, func() bool {
		return len(c.State().FilteredUsers) == 2
	}, time.Second, 5*time.Millisecond, "a new snapshot is filtered with the current query and filter")

	snaps <- account.DirectorySnapshot{Err: errors.New("")}
	assert.Eventually(t, func() bool {
		s := c.State()
		return s.Closed && s.Error == account.MsgDirectoryFallback
	}, time.Second, 5*time.Millisecond)

	assert.Len(t, c.State().AllUsers, 4, "last good snapshot is kept after an error")
}

func TestDirectoryControllerCloseReleasesSubscription(t *testing.T) {
	snaps := make(chan account.DirectorySnapshot)
	directory := new(MockDirectory)
	directory.On("ObserveAll", mock.Anything).Return((<-chan account.DirectorySnapshot)(snaps))

	c := account.NewDirectoryController(context.Background(), newTestService(new(MockIdentity), directory))

	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("close did not release the subscription")
	}
	assert.True(t, c.State().Closed)
}

func TestRegisterControllerFormValidity(t *testing.T) {
	identity := new(MockIdentity)
	c := account.NewRegisterController(context.Background(), newTestService(identity, new(MockDirectory)))
	defer c.Close()

	c.SetName("Diva")
	c.SetEmail("diva@example.com")
	c.SetPassword("Secret1")
	assert.False(t, c.State().FormValid, "confirmation not typed yet")

	c.SetConfirmPassword("Secret1")
	assert.True(t, c.State().FormValid)

	c.SetPassword("Secret2")
	assert.Equal(t, account.StateInvalid, c.State().ConfirmPasswordValidations[0].State)
	assert.False(t, c.State().FormValid)

	c.Submit()
	c.Wait()
	assert.Equal(t, account.MsgFormInvalid, c.State().Error)
	identity.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterControllerSubmit(t *testing.T) {
	user := testUser()
	identity := new(MockIdentity)
	directory := new(MockDirectory)
	identity.On("SignUp", mock.Anything, "Diva", user.Email, "Secret1").Return(user, nil)
	identity.On("SendEmailVerification", mock.Anything).Return(nil)
	directory.On("Upsert", mock.Anything, *user).Return(nil)

	c := account.NewRegisterController(context.Background(), newTestService(identity, directory))
	defer c.Close()

	c.SetName("Diva")
	c.SetEmail(user.Email)
	c.SetPassword("Secret1")
	c.SetConfirmPassword("Secret1")
	c.Submit()
	c.Wait()

	state := c.State()
	assert.False(t, state.Loading)
	assert.True(t, state.Success)
	assert.Equal(t, user, state.User)
}

func TestLoginController(t *testing.T) {
	identity := new(MockIdentity)
	identity.On("SignIn", mock.Anything, "diva@example.com", "secret1").
		Return(nil, errors.New("The password is invalid"))

	c := account.NewLoginController(context.Background(), newTestService(identity, new(MockDirectory)))
	defer c.Close()

	c.SetEmail("diva@example.com")
	c.SetPassword("secret1")
	c.Submit()
	c.Wait()

	assert.False(t, c.State().Loading)
	assert.Equal(t, "The password is invalid", c.State().Error)

	c.SetPassword("secret2")
	assert.Empty(t, c.State().Error, "editing a field clears the error")
}

func TestForgotPasswordController(t *testing.T) {
	identity := new(MockIdentity)
	identity.On("SendPasswordReset", mock.Anything, "diva@example.com").Return(nil)

	c := account.NewForgotPasswordController(context.Background(), newTestService(identity, new(MockDirectory)))
	defer c.Close()

	c.Submit()
	c.Wait()
	assert.Equal(t, account.MsgEmailRequired, c.State().Error)

	c.SetEmail("diva@example.com")
	c.Submit()
	c.Wait()
	assert.True(t, c.State().Success)

	c.ResetSuccess()
	assert.False(t, c.State().Success)
}
