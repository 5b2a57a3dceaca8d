// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XFactory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	assert.Equal(t, []string{"Divisions"}, parsePath("Divisions"), "单段路径应当被解析。")
	assert.Equal(t, []string{"Divisions", "Employees"}, parsePath("Divisions.Employees"), "点分路径应当按段切分。")
	assert.Equal(t, []string{"A", "B", "C"}, parsePath([]string{"A", "B", "C"}), "数组形式的路径应当原样返回。")

	assert.Panics(t, func() { parsePath("") }, "空路径应当 panic。")
	assert.Panics(t, func() { parsePath("A..B") }, "路径包含空段时应当 panic。")
	assert.Panics(t, func() { parsePath([]string{}) }, "空数组路径应当 panic。")
	assert.Panics(t, func() { parsePath(42) }, "路径类型非法时应当 panic。")
}

func TestRequestMerge(t *testing.T) {
	rs := make(requestSet)
	rs.merge([]string{"Divisions", "Employees"}, 3, nil, nil)
	rs.merge([]string{"Divisions"}, 2, nil, nil)
	rs.merge([]string{"Divisions"}, 1, []Mutator{func(model IModel) {}}, nil)

	divisions := rs["Divisions"]
	require.NotNil(t, divisions, "请求节点应当被创建。")
	assert.Equal(t, 3, divisions.count, "同一路径的重复请求应当累加数量。")
	assert.Len(t, divisions.mutators, 1, "修改器应当按调用顺序追加。")

	employees := divisions.children["Employees"]
	require.NotNil(t, employees, "嵌套请求节点应当被创建。")
	assert.Equal(t, 3, employees.count, "数量应当作用于路径末端的关联。")
	assert.Empty(t, employees.children)
}

func TestRequestTotal(t *testing.T) {
	req := &relationRequest{name: "Divisions"}
	assert.Equal(t, 1, req.total(), "未显式指定数量时默认为 1。")

	req.count = 3
	assert.Equal(t, 3, req.total(), "显式数量应当生效。")

	req.instances = []IModel{NewTestDivision(), NewTestDivision(), NewTestDivision(), NewTestDivision()}
	assert.Equal(t, 4, req.total(), "预置实例超出显式数量时应当取较大值。")

	req.count = 6
	assert.Equal(t, 6, req.total(), "显式数量超出预置实例时由工厂补足。")
}

func TestRequestImplicitNode(t *testing.T) {
	rs := make(requestSet)
	rs.merge([]string{"Divisions", "Employees"}, 2, nil, nil)

	divisions := rs["Divisions"]
	require.NotNil(t, divisions)
	assert.Equal(t, 0, divisions.count, "隐式创建的中间节点不应携带显式数量。")
	assert.Equal(t, 1, divisions.total(), "隐式节点的实际构建总量为 1。")
}
