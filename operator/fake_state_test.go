package operator_test

import "github.com/sebitommy123/sa/value"

// fakeRunState is a minimal value.RunState for exercising operators in
// isolation: every narrowing call is recorded instead of acting on real
// scopes, and Child returns a fresh instance so nested filter/map/foreach
// bodies don't see a parent's recorded calls.
type fakeRunState struct {
	allData         *value.ObjectList
	narrowedFields  []string
	narrowedType    string
	narrowedIDTypes []value.IDType
	conditions      []string
	subQueryErr     error
	subQueryResult  value.Value
}

func (s *fakeRunState) NarrowSetIDTypes(ids []value.IDType) { s.narrowedIDTypes = ids }
func (s *fakeRunState) NarrowFilterType(t string)           { s.narrowedType = t }
func (s *fakeRunState) NarrowFilterFields(fs []string) {
	s.narrowedFields = append(s.narrowedFields, fs...)
}
func (s *fakeRunState) NarrowAddCondition(field, op string, v value.Value) {
	s.conditions = append(s.conditions, field+op+v.Text())
}
func (s *fakeRunState) Child() value.RunState { return &fakeRunState{allData: s.allData} }
func (s *fakeRunState) RunSubQuery(query string) (value.Value, error) {
	return s.subQueryResult, s.subQueryErr
}
func (s *fakeRunState) AllData() *value.ObjectList   { return s.allData }
func (s *fakeRunState) DescribeNeededScopes() string { return "no scopes needed" }
