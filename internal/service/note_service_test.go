package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feconecta/feconecta-api/internal/repository"
)

func newNotes(f *fixture) *NoteService {
	return NewNoteService(repository.NewNoteRepository(f.db), f.sessions, testLogger())
}

func TestNoteListWithoutSessionIsEmpty(t *testing.T) {
	f := newFixture(t)

	notes := newNotes(f)
	list, err := notes.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestNoteCreateAndList(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	notes := newNotes(f)
	note, err := notes.Create(context.Background(), "Estudo de João 3", "Deus amou o mundo", "João 3:16", []string{"amor", "evangelho"}, true)
	require.NoError(t, err)
	require.True(t, note.Private)
	require.Equal(t, []string{"amor", "evangelho"}, []string(note.Tags))

	list, err := notes.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestNoteCreateRequiresTitle(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	notes := newNotes(f)
	_, err := notes.Create(context.Background(), "   ", "conteúdo", "", nil, true)
	require.ErrorIs(t, err, ErrEmptyContent)
}

func TestNotesAreOwnerScoped(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	notes := newNotes(f)
	note, err := notes.Create(context.Background(), "Minha nota", "particular", "", nil, true)
	require.NoError(t, err)

	f.signUp(t, "joao")

	list, err := notes.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)

	err = notes.Delete(context.Background(), note.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
