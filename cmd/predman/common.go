package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"predman/internal/board"
	"predman/internal/client"
	"predman/internal/domain"
	"predman/internal/session"

	"github.com/spf13/viper"
)

var errNotLoggedIn = errors.New("not logged in, run `predman login` first")

func openSession() (*session.Store, error) {
	path := viper.GetString("session-file")
	if path == "" {
		def, err := session.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("locate session file: %w", err)
		}
		path = def
	}
	return session.Open(path)
}

// authedClient returns a client carrying the stored token.
func authedClient() (*client.Client, session.Session, error) {
	store, err := openSession()
	if err != nil {
		return nil, session.Session{}, err
	}
	sess, ok := store.Get()
	if !ok {
		return nil, session.Session{}, errNotLoggedIn
	}
	return client.New(viper.GetString("api-url"), sess.Token), sess, nil
}

// loadBoard fetches the board of projectID into a fresh store.
func loadBoard(ctx context.Context, projectID string) (*board.Store, error) {
	c, _, err := authedClient()
	if err != nil {
		return nil, err
	}
	store := board.NewStore(c, projectID)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// position finds where taskID sits on the board.
func position(store *board.Store, taskID string) (board.Position, error) {
	b, _ := store.Get()
	bk, i, ok := b.Find(taskID)
	if !ok {
		return board.Position{}, domain.NotFound(fmt.Sprintf("task %s is not on the board", taskID))
	}
	return board.Position{Bucket: bk, Index: i}, nil
}

// parseTarget reads a destination like "inprogress" or "inprogress:2". A
// missing index means the end of the column.
func parseTarget(b domain.Board, src board.Position, s string) (board.Position, error) {
	name, idx, hasIdx := strings.Cut(s, ":")
	bk, err := domain.ParseBucket(name)
	if err != nil {
		return board.Position{}, err
	}

	end := len(b.Column(bk))
	if bk == src.Bucket {
		end--
	}
	if !hasIdx {
		return board.Position{Bucket: bk, Index: end}, nil
	}

	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 || i > end {
		return board.Position{}, domain.Invalid(fmt.Sprintf("index must be between 0 and %d", end))
	}
	return board.Position{Bucket: bk, Index: i}, nil
}

