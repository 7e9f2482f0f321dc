package client_test

import (
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/meshworks/gridnode/client"
	"github.com/meshworks/gridnode/framework"
	"github.com/meshworks/gridnode/node"
	"github.com/meshworks/gridnode/uid"
	"github.com/meshworks/gridnode/worker"
)

// ClientTestSuite drives a real worker through the websocket transport
// end to end.
type ClientTestSuite struct {
	suite.Suite
	logger *slog.Logger
	srv    *httptest.Server
	c      *client.Client
}

func (s *ClientTestSuite) SetupSuite() {
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	fw := framework.Static("calc", map[string]framework.Node{
		"calc": framework.Namespace(map[string]framework.Node{
			"add": framework.Func(func(args []any) (any, error) {
				if len(args) != 2 {
					return nil, fmt.Errorf("add wants 2 args")
				}
				return args[0].(float64) + args[1].(float64), nil
			}),
			"table": framework.Namespace(map[string]framework.Node{
				"new": framework.Func(func(args []any) (any, error) {
					return map[string]any{"cells": args}, nil
				}),
			}),
		}),
	})

	w, err := worker.New("node-suite",
		worker.WithLogger(s.logger.WithGroup("node")),
		worker.WithFrameworks(fw),
		worker.WithDebug(true),
	)
	s.Require().NoError(err)

	ws, err := node.NewWS(w, node.WSConfig{
		Logger:  s.logger,
		Binding: "127.0.0.1:0",
	})
	s.Require().NoError(err)

	s.srv = httptest.NewServer(ws.Handler())

	endpoint := strings.TrimPrefix(s.srv.URL, "http://")
	s.c, err = client.Dial(&client.Config{
		Logger:   s.logger.WithGroup("caller"),
		Endpoint: endpoint,
	})
	s.Require().NoError(err)
}

func (s *ClientTestSuite) TearDownSuite() {
	if s.c != nil {
		s.c.Close()
	}
	if s.srv != nil {
		s.srv.Close()
	}
}

func (s *ClientTestSuite) TestSaveGetDeleteLifecycle() {
	id := uid.New()

	s.Require().NoError(s.c.Save(id, 42))

	got, err := s.c.Get(id)
	s.Require().NoError(err)
	s.Require().EqualValues(42, got)

	s.Require().NoError(s.c.Delete(id))

	_, err = s.c.Get(id)
	s.Require().ErrorIs(err, client.ErrNotFound)
}

func (s *ClientTestSuite) TestCallReturnsInlineScalar() {
	val, ptr, err := s.c.Call("calc.add", []any{20.0, 22.0})
	s.Require().NoError(err)
	s.Require().Nil(ptr)
	s.Require().EqualValues(42, val)
}

func (s *ClientTestSuite) TestCallReturnsPointerForStructuredResult() {
	val, ptr, err := s.c.Call("calc.table.new", []any{1.0, 2.0, 3.0})
	s.Require().NoError(err)
	s.Require().Nil(val)
	s.Require().NotNil(ptr)
	s.Require().Equal("node-suite", ptr.Location)

	// the pointee stays fetchable by the pointer's identifier
	got, err := s.c.Get(ptr.ID)
	s.Require().NoError(err)
	s.Require().Contains(got.(map[string]any), "cells")
}

func (s *ClientTestSuite) TestUnresolvedPath() {
	_, _, err := s.c.Call("calc.divide", nil)
	s.Require().ErrorIs(err, client.ErrUnresolvedPath)
}

func (s *ClientTestSuite) TestDeleteAbsentIsNotFound() {
	s.Require().ErrorIs(s.c.Delete(uid.New()), client.ErrNotFound)
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func TestDial_Validation(t *testing.T) {
	_, err := client.Dial(nil)
	require.Error(t, err)

	_, err = client.Dial(&client.Config{})
	require.Error(t, err)
}
