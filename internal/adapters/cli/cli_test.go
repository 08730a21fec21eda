package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ops-portal/internal/app"
	"ops-portal/internal/core"
)

type fakeService struct {
	app.ApplicationService

	createdUser *app.CreateUserRequest
	authUser    string
	authPass    string
	rejected    []string
}

func (f *fakeService) CreateUser(_ context.Context, req app.CreateUserRequest) (*app.UserResult, error) {
	f.createdUser = &req
	return &app.UserResult{UserID: 5, Username: req.Username, Role: req.Role}, nil
}

func (f *fakeService) AuthenticateUser(_ context.Context, username, password string) (*app.UserSession, error) {
	f.authUser, f.authPass = username, password
	return &app.UserSession{UserID: 5, Username: username, Role: core.RoleAdmin}, nil
}

func (f *fakeService) RejectOrder(_ context.Context, ref string, _ int) (*app.OrderResult, error) {
	f.rejected = append(f.rejected, ref)
	return &app.OrderResult{Order: &core.Order{DisplayNumber: "0003", Status: core.StatusRejected}}, nil
}

func TestRun_NoCommand(t *testing.T) {
	assert.Error(t, Run(context.Background(), &fakeService{}, nil, Options{Out: &bytes.Buffer{}}))
}

func TestRun_UserAdd(t *testing.T) {
	svc := &fakeService{}
	var out bytes.Buffer
	err := Run(context.Background(), svc, []string{"user-add", "alice", "alice@example.com", "admin"}, Options{
		In:  bufio.NewReader(strings.NewReader("s3cret-pass\n")),
		Out: &out,
	})
	require.NoError(t, err)
	require.NotNil(t, svc.createdUser)
	assert.Equal(t, "s3cret-pass", svc.createdUser.Password)
	assert.Equal(t, core.RoleAdmin, svc.createdUser.Role)
	assert.Contains(t, out.String(), "User alice created (ID: 5, role: admin).")
}

func TestRun_UserAdd_DefaultsToStaff(t *testing.T) {
	svc := &fakeService{}
	err := Run(context.Background(), svc, []string{"user-add", "bob", "bob@example.com"}, Options{
		In:  bufio.NewReader(strings.NewReader("password1")),
		Out: &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.Equal(t, core.RoleStaff, svc.createdUser.Role)
	assert.Equal(t, "password1", svc.createdUser.Password)
}

func TestRun_UserAdd_NeedsStdin(t *testing.T) {
	err := Run(context.Background(), &fakeService{}, []string{"user-add", "bob", "bob@example.com"}, Options{Out: &bytes.Buffer{}})
	assert.Error(t, err)
}

func TestRun_Token(t *testing.T) {
	svc := &fakeService{}
	var out bytes.Buffer
	err := Run(context.Background(), svc, []string{"token", "alice"}, Options{
		In:        bufio.NewReader(strings.NewReader("pw\n")),
		Out:       &out,
		JWTSecret: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", svc.authUser)
	assert.Equal(t, "pw", svc.authPass)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	raw := strings.TrimPrefix(lines[len(lines)-1], "Password: ")
	parsed, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
}

func TestRun_DelegatesToConsole(t *testing.T) {
	svc := &fakeService{}
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), svc, []string{"reject", "#0003"}, Options{Out: &out}))
	assert.Equal(t, []string{"#0003"}, svc.rejected)
	assert.Contains(t, out.String(), "Order #0003 is now REJECTED.")
}
