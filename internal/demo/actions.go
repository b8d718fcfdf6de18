package demo

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/isomorph/internal/config"
	"github.com/roach88/isomorph/internal/dispatch"
	"github.com/roach88/isomorph/internal/engine"
	"github.com/roach88/isomorph/internal/userdir"
	"github.com/roach88/isomorph/internal/value"
)

// Store and action names.
const (
	StoreApp       = "app"
	StoreUser      = "user"
	StoreDirectory = "directory"

	ActionLoadUser  = "user:load"
	ActionListUsers = "users:list"
	ActionFirstUser = "users:first"
)

func registerStores(c *engine.Context, cfg config.Config) {
	c.CreateStore(StoreApp, cfg.Object())

	c.CreateStore(StoreUser, value.Object{
		"login":     value.String(""),
		"name":      value.String(""),
		"avatarUrl": value.String(""),
		"company":   value.String(""),
		"found":     value.Bool(false),
		"loading":   value.Bool(false),
		"error":     value.Null{},
	}).
		Handle(dispatch.Started(ActionLoadUser), func(s *dispatch.Store, _ value.Value) error {
			s.Set("loading", value.Bool(true))
			s.Set("error", value.Null{})
			return nil
		}).
		Handle(dispatch.Succeeded(ActionLoadUser), func(s *dispatch.Store, payload value.Value) error {
			obj, ok := payload.(value.Object)
			if !ok {
				return fmt.Errorf("unexpected payload %T", payload)
			}
			s.Merge(obj)
			s.Set("loading", value.Bool(false))
			return nil
		}).
		Handle(dispatch.Failed(ActionLoadUser), func(s *dispatch.Store, payload value.Value) error {
			s.Set("loading", value.Bool(false))
			s.Set("error", payload)
			return nil
		})

	c.CreateStore(StoreDirectory, value.Object{"users": value.Array{}}).
		Handle(dispatch.Succeeded(ActionListUsers), func(s *dispatch.Store, payload value.Value) error {
			s.Set("users", payload)
			return nil
		})
}

func registerActions(c *engine.Context, dir *userdir.Directory) {
	c.CreateAction(ActionLoadUser, loadUser(dir))
	c.CreateAction(ActionListUsers, listUsers(dir))
	c.CreateAction(ActionFirstUser, firstUser(dir))
}

// loadUser reads the user named by the userName param. Unknown users load
// as found=false rather than failing.
func loadUser(dir *userdir.Directory) engine.ActionFunc {
	return func(ctx context.Context, _ *engine.Context, params value.Value) (value.Value, error) {
		login := param(params, "userName")
		u, err := dir.Get(ctx, login)
		if errors.Is(err, userdir.ErrNotFound) {
			obj := userdir.User{Login: login}.Object()
			obj["found"] = value.Bool(false)
			return obj, nil
		}
		if err != nil {
			return nil, err
		}

		obj := u.Object()
		obj["found"] = value.Bool(true)
		return obj, nil
	}
}

func listUsers(dir *userdir.Directory) engine.ActionFunc {
	return func(ctx context.Context, _ *engine.Context, _ value.Value) (value.Value, error) {
		users, err := dir.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make(value.Array, len(users))
		for i, u := range users {
			out[i] = u.Object()
		}
		return out, nil
	}
}

// firstUser navigates to the page of the earliest user in the directory.
func firstUser(dir *userdir.Directory) engine.ActionFunc {
	return func(ctx context.Context, c *engine.Context, _ value.Value) (value.Value, error) {
		u, err := dir.First(ctx)
		if err != nil {
			return nil, err
		}
		return value.String(u.Login), c.NavigateToRoute("user", map[string]string{"userName": u.Login})
	}
}

func param(params value.Value, key string) string {
	obj, ok := params.(value.Object)
	if !ok {
		return ""
	}
	s, _ := obj[key].(value.String)
	return string(s)
}
