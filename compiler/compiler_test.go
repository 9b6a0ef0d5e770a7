package compiler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cascade/ast"
	"github.com/sarchlab/cascade/compiler"
	"github.com/sarchlab/cascade/engine"
)

func TestCompileStubShortCircuits(t *testing.T) {
	md := ast.NewModuleDeclaration("empty")
	info := ast.ModuleInfoOf(md)
	info.MarkComputed()

	c := compiler.New(nil, nil)
	eng, err := c.Compile(context.Background(), compiler.Request{Module: md, Info: info}, engine.StubInterface{})
	require.NoError(t, err)
	assert.IsType(t, engine.StubCore{}, eng.Core)
}

func TestCompileDispatchesByStd(t *testing.T) {
	md := ast.NewModuleDeclaration("led")
	md.Std = "led"
	info := ast.ModuleInfoOf(md)
	info.Inputs = []ast.Node{ast.NewPortDeclaration(ast.DirInput, ast.Id{Name: "in"}, nil)}
	info.MarkComputed()

	c := compiler.New(nil, nil)
	called := false
	c.Register("led", func(ctx context.Context, req compiler.Request) (engine.Core, error) {
		called = true
		return engine.StubCore{}, nil
	})

	_, err := c.Compile(context.Background(), compiler.Request{Module: md, Info: info}, engine.StubInterface{})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestCompileMissingBackendErrors(t *testing.T) {
	md := ast.NewModuleDeclaration("custom")
	md.Std = "custom"
	info := ast.ModuleInfoOf(md)
	info.Inputs = []ast.Node{ast.NewPortDeclaration(ast.DirInput, ast.Id{Name: "in"}, nil)}
	info.MarkComputed()

	c := compiler.New(nil, nil)
	_, err := c.Compile(context.Background(), compiler.Request{Module: md, Info: info}, engine.StubInterface{})
	assert.Error(t, err)
}

func TestCompileAndReplaceDiscardsSupersededVersion(t *testing.T) {
	md := ast.NewModuleDeclaration("logic")
	md.Std = "logic"
	info := ast.ModuleInfoOf(md)
	info.MarkComputed()

	c := compiler.New(nil, nil)
	uuid := xid.New()

	err := c.CompileAndReplace(
		&engine.Engine{},
		compiler.Request{UUID: uuid, Version: 1, Module: md, Info: info},
		engine.StubInterface{},
		func(compiler.Interrupt) {},
	)
	require.NoError(t, err)

	err = c.CompileAndReplace(
		&engine.Engine{},
		compiler.Request{UUID: uuid, Version: 1, Module: md, Info: info},
		engine.StubInterface{},
		func(compiler.Interrupt) {},
	)
	assert.Error(t, err, "an equal-or-earlier version for the same uuid must be rejected")
}

func TestCompileAndReplaceRunsSecondPassThroughPost(t *testing.T) {
	md := ast.NewModuleDeclaration("custom")
	md.Std = "custom"
	info := ast.ModuleInfoOf(md)
	info.MarkComputed()

	c := compiler.New(nil, nil)
	done := make(chan struct{})
	c.Register("custom", func(ctx context.Context, req compiler.Request) (engine.Core, error) {
		return engine.StubCore{}, nil
	})

	eng := &engine.Engine{}
	err := c.CompileAndReplace(
		eng,
		compiler.Request{UUID: xid.New(), Version: 1, Module: md, Info: info, SecondPass: true},
		engine.StubInterface{},
		func(i compiler.Interrupt) {
			i()
			close(done)
		},
	)
	require.NoError(t, err)
	<-done
	assert.IsType(t, engine.StubCore{}, eng.Core)
}

func TestSecondPassBackendErrorKeepsFirstPassSuccess(t *testing.T) {
	md := ast.NewModuleDeclaration("custom")
	md.Std = "custom"
	info := ast.ModuleInfoOf(md)
	info.MarkComputed()

	c := compiler.New(nil, nil)
	c.Register("custom", func(ctx context.Context, req compiler.Request) (engine.Core, error) {
		return nil, errors.New("backend unavailable")
	})

	eng := &engine.Engine{}
	err := c.CompileAndReplace(
		eng,
		compiler.Request{UUID: xid.New(), Version: 1, Module: md, Info: info, SecondPass: true},
		engine.StubInterface{},
		func(i compiler.Interrupt) { i() },
	)
	assert.NoError(t, err, "a first-pass success is reported even if the background second pass later fails")
}
