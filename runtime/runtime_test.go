package runtime_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cascade/ast"
	"github.com/sarchlab/cascade/runtime"
)

func TestNewBuildsIdleRuntime(t *testing.T) {
	rt := runtime.New(nil)
	st := rt.Stats()
	require.Equal(t, uint64(0), st.LogicalTime)
	require.Equal(t, 0, st.EnginesBuilt)
}

func TestDeclareThenEvalInstantiation(t *testing.T) {
	rt := runtime.New(nil)

	md := ast.NewModuleDeclaration("counter")
	require.NoError(t, rt.Declare(md))

	inst := ast.NewModuleInstantiation("counter", "c0", nil, nil)
	require.NoError(t, rt.Eval(inst))
}

func TestDeclareRejectsDuplicateName(t *testing.T) {
	rt := runtime.New(nil)
	md := ast.NewModuleDeclaration("dup")
	require.NoError(t, rt.Declare(md))
	require.Error(t, rt.Declare(ast.NewModuleDeclaration("dup")))
}

func TestEvalRejectsUndeclaredInstantiation(t *testing.T) {
	rt := runtime.New(nil)
	inst := ast.NewModuleInstantiation("missing", "m0", nil, nil)
	require.Error(t, rt.Eval(inst))
}

func TestBindStdoutAcceptsWriter(t *testing.T) {
	rt := runtime.New(nil)
	var buf bytes.Buffer
	rt.BindStdout(&buf)
}
