package di_test

import (
	"testing"

	"github.com/gocrud/beans/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagged struct {
	Plain    *A                  `di:""`
	Named    *A                  `di:"primary"`
	Optional *A                  `di:"?"`
	Both     *A                  `di:"backup,optional"`
	Deferred func() *A           `di:",lazy"`
	Provided di.Provider[*Clock] `di:"clock"`
	Skipped  *A                  `di:"-"`
	Untagged *A
}

func TestScanFields(t *testing.T) {
	fields := di.ScanFields(di.TypeOf[*tagged]())
	require.Len(t, fields, 6)

	byName := map[string]di.FieldRequirement{}
	for _, fr := range fields {
		byName[fr.Field] = fr
	}

	assert.Equal(t, di.Auto(), byName["Plain"].Requirement)
	assert.Equal(t, di.Ref("primary"), byName["Named"].Requirement)
	assert.Equal(t, di.Auto().Optional(), byName["Optional"].Requirement)
	assert.Equal(t, di.Ref("backup").Optional(), byName["Both"].Requirement)
	assert.Equal(t, di.Auto().Lazily(), byName["Deferred"].Requirement)
	assert.Equal(t, di.Ref("clock"), byName["Provided"].Requirement)
	assert.NotContains(t, byName, "Skipped")
	assert.NotContains(t, byName, "Untagged")
}

func TestDescribe_CompletesTypesOnRegister(t *testing.T) {
	f := di.NewFactory()
	require.NoError(t, f.Register(di.Describe[*tagged]("tagged", di.WithUnshared())))

	desc, ok := f.Descriptor("tagged")
	require.True(t, ok)
	assert.Equal(t, di.ScopeUnshared, desc.Scope)

	byName := map[string]di.FieldRequirement{}
	for _, fr := range desc.Fields {
		byName[fr.Field] = fr
	}
	assert.Equal(t, di.TypeOf[*A](), byName["Deferred"].Type)
	assert.True(t, byName["Provided"].Deferred)
	assert.Equal(t, di.TypeOf[*Clock](), byName["Provided"].Type)
}

func TestDescribe_NonStruct(t *testing.T) {
	desc := di.Describe[Repo]("repo")
	assert.Empty(t, desc.Fields)
	assert.Equal(t, di.ScopeShared, desc.Scope)
}

func TestRequirementString(t *testing.T) {
	assert.Equal(t, `"a"`, di.Ref("a").String())
	assert.Equal(t, "*di_test.A", di.ByType(di.TypeOf[*A]()).String())
	assert.Equal(t, `"a" (*di_test.A)`, di.RefOf[*A]("a").String())
	assert.Equal(t, "<unknown>", di.Auto().String())
}
