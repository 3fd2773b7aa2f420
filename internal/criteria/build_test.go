package criteria

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/activityquery/internal/activity"
	"github.com/roach88/activityquery/internal/querysql"
	"github.com/roach88/activityquery/internal/search"
	"github.com/roach88/activityquery/internal/testutil"
)

func newPipeline() (*activity.Resolver, *querysql.Compiler) {
	r := activity.New(testutil.Lookups())
	return r, querysql.NewCompiler(r)
}

func TestRun_RequestFiles(t *testing.T) {
	files, err := FindFiles(filepath.Join("testdata", "requests"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			req, err := LoadFile(path)
			require.NoError(t, err)
			require.NotNil(t, req.Expect, "request files carry expectations")

			r, c := newPipeline()
			_, err = Run(req, r, c)
			assert.NoError(t, err)
		})
	}
}

func TestBuild_Golden(t *testing.T) {
	for _, name := range []string{"activity_search", "contact_search_or_groups"} {
		t.Run(name, func(t *testing.T) {
			req, err := LoadFile(filepath.Join("testdata", "requests", name+".yaml"))
			require.NoError(t, err)

			r, c := newPipeline()
			res := AssertGolden(t, req, r, c)
			assert.Empty(t, res.Warnings)
		})
	}
}

func TestBuild_Result(t *testing.T) {
	req := &Request{
		Name:      "ids",
		RequestID: "req-ids",
		Params: []Param{
			{Name: "activity_id", Value: []any{3, 4}},
			{Name: "activity_role", Value: 2},
		},
	}
	r, c := newPipeline()
	res, err := Build(req, r, c)
	require.NoError(t, err)

	assert.Equal(t, "ids", res.Name)
	assert.Equal(t, "req-ids", res.Query.RequestID)
	assert.True(t, res.Query.UseDistinct)
	assert.Equal(t, "2", res.Effects.ActivityRole)
	assert.Contains(t, res.Statement.SQL, "civicrm_activity.id IN (3,4)")
	assert.Contains(t, res.Statement.SQL, "civicrm_activity_contact.record_type_id = 1")
}

type failingContributor struct{ err error }

func (f failingContributor) Select(*search.Query) {}

func (f failingContributor) Where(*search.Query) (activity.Effects, error) {
	return activity.Effects{}, f.err
}

type failingCompiler struct{ err error }

func (f failingCompiler) Compile(*search.Query) (querysql.Statement, error) {
	return querysql.Statement{}, f.err
}

func TestBuild_Errors(t *testing.T) {
	boom := errors.New("boom")
	r, c := newPipeline()

	_, err := Build(&Request{Name: "bad-mode", Mode: "nope"}, r, c)
	assert.ErrorContains(t, err, "request bad-mode")

	_, err = Build(&Request{Name: "where"}, failingContributor{err: boom}, c)
	assert.ErrorIs(t, err, boom)

	_, err = Build(&Request{Name: "compile"}, r, failingCompiler{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestRun_ExpectedError(t *testing.T) {
	r, c := newPipeline()
	failing := []Param{{Name: "activity_date", Op: "IN", Value: "2013-01-01"}}

	res, err := Run(&Request{Name: "ok", Params: failing, Expect: &Expect{Error: "unsupported date operator"}}, r, c)
	assert.NoError(t, err)
	assert.Nil(t, res)

	_, err = Run(&Request{Name: "other", Params: failing, Expect: &Expect{Error: "something else"}}, r, c)
	var ee *ExpectationError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "other", ee.Request)

	_, err = Run(&Request{Name: "builds", Expect: &Expect{Error: "anything"}}, r, c)
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Failures[0], "build succeeded")

	_, err = Run(&Request{Name: "unexpected", Params: failing}, r, c)
	require.Error(t, err)
	assert.False(t, errors.As(err, &ee))
}

func TestRun_NoExpectations(t *testing.T) {
	r, c := newPipeline()
	res, err := Run(&Request{Name: "plain"}, r, c)
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestCheck(t *testing.T) {
	yes, no := true, false
	res := &Result{
		Query: &search.Query{UseDistinct: true},
		Statement: querysql.Statement{
			SQL:    "SELECT a FROM b WHERE c",
			Qill:   []string{"first line", "second line"},
			Tables: []string{"t1", "t2"},
		},
		Effects: activity.Effects{ConsiderComponentActivities: true, ActivityRole: "3"},
	}

	passing := Expect{
		SQLContains:         []string{"FROM b"},
		SQLNotContains:      []string{"ORDER"},
		Qill:                []string{"first line", "second line"},
		QillContains:        []string{"second"},
		Tables:              []string{"t1", "t2"},
		ComponentActivities: &yes,
		ActivityRole:        "3",
		Distinct:            &yes,
	}
	assert.NoError(t, Check("pass", res, passing))

	failing := Expect{
		SQLContains:         []string{"JOIN"},
		SQLNotContains:      []string{"WHERE"},
		Qill:                []string{"first line"},
		QillContains:        []string{"third"},
		Tables:              []string{"t2", "t1"},
		ComponentActivities: &no,
		ActivityRole:        "1",
		Distinct:            &no,
	}
	err := Check("fail", res, failing)
	var ee *ExpectationError
	require.ErrorAs(t, err, &ee)
	assert.Len(t, ee.Failures, 8)
	assert.Contains(t, err.Error(), "request fail: 8 expectation(s) failed")
}
