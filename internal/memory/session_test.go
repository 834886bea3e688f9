package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astra/internal/store"
)

type fakeModel struct {
	reply  string
	next   []byte
	err    error
	gotTok []byte
	gotSys string
	calls  int
}

func (f *fakeModel) Complete(_ context.Context, prompt, system string, token []byte) (string, []byte, error) {
	f.calls++
	f.gotTok = token
	f.gotSys = system
	if f.err != nil {
		return "", nil, f.err
	}
	return f.reply, f.next, nil
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	b, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return store.New(b, "", "")
}

func TestSession_SuccessPersistsToken(t *testing.T) {
	st := newStore(t)
	m := &fakeModel{reply: "Olá!", next: []byte(`[10,20]`)}
	s := NewSession(m, st, "Você é a Astra.")

	reply, err := s.Converse(context.Background(), "oi")
	require.NoError(t, err)
	assert.Equal(t, "Olá!", reply)
	assert.Nil(t, m.gotTok)
	assert.Equal(t, "Você é a Astra.", m.gotSys)
	assert.JSONEq(t, `[10,20]`, string(s.Token()))
	assert.JSONEq(t, `[10,20]`, string(st.LoadMemory()))
}

func TestSession_ThreadsTokenAcrossCalls(t *testing.T) {
	st := newStore(t)
	m := &fakeModel{reply: "a", next: []byte(`[1]`)}
	s := NewSession(m, st, "")

	_, err := s.Converse(context.Background(), "um")
	require.NoError(t, err)

	m.next = []byte(`[1,2]`)
	_, err = s.Converse(context.Background(), "dois")
	require.NoError(t, err)
	assert.JSONEq(t, `[1]`, string(m.gotTok))
	assert.JSONEq(t, `[1,2]`, string(s.Token()))
}

func TestSession_FailurePreservesToken(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.SaveMemory([]byte(`[5,6,7]`)))

	m := &fakeModel{err: errors.New("connection refused")}
	s := NewSession(m, st, "")
	before := append([]byte(nil), s.Token()...)

	reply, err := s.Converse(context.Background(), "oi")
	assert.Error(t, err)
	assert.Equal(t, Apology, reply)
	assert.Equal(t, before, s.Token())
	assert.JSONEq(t, `[5,6,7]`, string(st.LoadMemory()))
}

func TestSession_ResumesAfterRestart(t *testing.T) {
	st := newStore(t)
	m := &fakeModel{reply: "ok", next: []byte(`[42]`)}

	_, err := NewSession(m, st, "").Converse(context.Background(), "lembre disso")
	require.NoError(t, err)

	restarted := NewSession(m, st, "")
	_, err = restarted.Converse(context.Background(), "do que eu falei?")
	require.NoError(t, err)
	assert.JSONEq(t, `[42]`, string(m.gotTok))
}

func TestSession_AbsentTokenReplacesStored(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.SaveMemory([]byte(`[1]`)))

	s := NewSession(&fakeModel{reply: "ok"}, st, "")
	_, err := s.Converse(context.Background(), "oi")
	require.NoError(t, err)
	assert.Nil(t, s.Token())
	assert.Nil(t, st.LoadMemory())
}

func TestSession_EmptyReplyKeepsNewToken(t *testing.T) {
	st := newStore(t)
	s := NewSession(&fakeModel{reply: "  ", next: []byte(`[8,9]`)}, st, "")

	reply, err := s.Converse(context.Background(), "oi")
	require.NoError(t, err)
	assert.Equal(t, NoAnswer, reply)
	assert.JSONEq(t, `[8,9]`, string(s.Token()))
	assert.JSONEq(t, `[8,9]`, string(st.LoadMemory()))
}
