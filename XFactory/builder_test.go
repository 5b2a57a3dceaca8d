// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XFactory

import (
	"testing"

	"github.com/beego/beego/v2/client/orm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderCreateGraph(t *testing.T) {
	company, err := Of(NewTestCompany()).
		With(1, "Owner").
		With(2, "Divisions").
		With(3, "Divisions.Employees").
		With(2, "Tags").
		CreateE()
	require.NoError(t, err, "图谱构建不应返回错误。")

	root := company.(*TestCompany)
	assert.Greater(t, root.Id, 0, "根模型应当已持久化。")
	require.NotNil(t, root.Owner, "从属关联字段应当已填充。")
	assert.Greater(t, root.Owner.Id, 0, "从属关联记录应当先于根模型持久化。")

	ormer := orm.NewOrmUsingDB("default")
	count, err := ormer.LoadRelated(root, "Divisions")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "拥有关联的记录数量应当和请求的一致。")
	for _, division := range root.Divisions {
		num, err := ormer.LoadRelated(division, "Employees")
		require.NoError(t, err)
		assert.Equal(t, int64(3), num, "嵌套关联的数量应当作用于每个父级记录。")
	}

	count, err = ormer.LoadRelated(root, "Tags")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "多对多关联的记录数量应当和请求的一致。")
}

func TestBuilderBatching(t *testing.T) {
	company, err := Of(NewTestCompany()).
		With(1, "Divisions").
		With(1, "Divisions", func(model IModel) {
			model.(*TestDivision).Name = "batched"
		}).
		CreateE()
	require.NoError(t, err)

	ormer := orm.NewOrmUsingDB("default")
	count, err := ormer.LoadRelated(company.(*TestCompany), "Divisions")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "同一路径的重复请求应当被合批。")
	for _, division := range company.(*TestCompany).Divisions {
		assert.Equal(t, "batched", division.Name, "合批后的修改器应当作用于全部记录。")
	}
}

func TestBuilderTopUp(t *testing.T) {
	boss := Of(NewTestUser()).Create().(*TestUser)
	require.Greater(t, boss.Id, 0)

	core := NewTestDivision()
	core.Name = "core"

	company, err := Of(NewTestCompany()).
		WithModels("Owner", boss).
		WithModels("Divisions", core).
		With(3, "Divisions").
		CreateE()
	require.NoError(t, err)

	root := company.(*TestCompany)
	assert.Equal(t, boss.Id, root.Owner.Id, "预置的从属关联实例应当被直接关联。")
	assert.Greater(t, core.Id, 0, "预置的未持久化实例应当被写入。")
	assert.Equal(t, "core", core.Name, "预置实例的属性不应被蓝图覆盖。")

	ormer := orm.NewOrmUsingDB("default")
	count, err := ormer.LoadRelated(root, "Divisions")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count, "预置实例应当计入请求数量，不足部分由工厂补足。")
}

func TestBuilderTopUpOverflow(t *testing.T) {
	first := NewTestDivision()
	first.Name = "first"
	second := NewTestDivision()
	second.Name = "second"

	company, err := Of(NewTestCompany()).
		With(1, "Divisions").
		WithModels("Divisions", first, second).
		CreateE()
	require.NoError(t, err)

	ormer := orm.NewOrmUsingDB("default")
	count, err := ormer.LoadRelated(company.(*TestCompany), "Divisions")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "预置实例超出请求数量时应当全部关联。")
}

func TestBuilderPathForms(t *testing.T) {
	company, err := Of(NewTestCompany()).
		With(2, []string{"Divisions", "Employees"}).
		CreateE()
	require.NoError(t, err)

	ormer := orm.NewOrmUsingDB("default")
	count, err := ormer.LoadRelated(company.(*TestCompany), "Divisions")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "数组形式的路径应当和点分形式等价，中间关联隐式创建。")
	num, err := ormer.LoadRelated(company.(*TestCompany).Divisions[0], "Employees")
	require.NoError(t, err)
	assert.Equal(t, int64(2), num)
}

func TestBuilderNestedUnderBelongsTo(t *testing.T) {
	company, err := Of(NewTestCompany()).With(2, "Owner.Companies").CreateE()
	require.NoError(t, err)

	root := company.(*TestCompany)
	require.NotNil(t, root.Owner, "从属关联字段应当已填充。")

	ormer := orm.NewOrmUsingDB("default")
	count, err := ormer.LoadRelated(root.Owner, "Companies")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count, "从属关联下的嵌套请求应当挂载于同一父级记录。")
}

func TestBuilderUnregisteredRelated(t *testing.T) {
	rel := getRelationInfo(getModelInfo(NewTestSponsor()), "Badges")
	require.NotNil(t, rel, "关联分类不应依赖工厂注册。")
	assert.Equal(t, relationHasMany, rel.kind)
	assert.Nil(t, rel.related, "未注册工厂的关联模型信息应当为空。")

	_, err := Of(NewTestSponsor()).With(1, "Badges").CreateE()
	require.Error(t, err, "请求未注册工厂的关联应当在构建期返回错误。")
	assert.Contains(t, err.Error(), "was not registered")
}

func TestBuilderInverseM2M(t *testing.T) {
	tag, err := Of(NewTestTag()).With(2, "Companies").CreateE()
	require.NoError(t, err)

	ormer := orm.NewOrmUsingDB("default")
	count, err := ormer.LoadRelated(tag.(*TestTag), "Companies")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "多对多反向关联应当从关联模型一侧建立中间表记录。")
}

func TestBuilderHasManyOnUser(t *testing.T) {
	user, err := Of(NewTestUser()).With(2, "Companies").CreateE()
	require.NoError(t, err)

	ormer := orm.NewOrmUsingDB("default")
	count, err := ormer.LoadRelated(user.(*TestUser), "Companies")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "外键可空的拥有关联应当正常建立。")
}

func TestBuilderStateAndAttr(t *testing.T) {
	company := Of(NewTestCompany()).
		State("inactive").
		Attr(map[string]any{"Region": "EU"}).
		Mutate(func(model IModel) {
			model.(*TestCompany).Name = "mutated"
		}).
		Create().(*TestCompany)

	assert.False(t, company.Active, "命名状态应当在蓝图之后应用。")
	assert.Equal(t, "EU", company.Region, "字段覆盖应当在状态之后应用。")
	assert.Equal(t, "mutated", company.Name, "修改器应当按声明顺序应用。")
}

func TestBuilderTimes(t *testing.T) {
	companies := Of(NewTestCompany()).Times(3).CreateMany()
	require.Len(t, companies, 3, "批量构建的数量应当和 Times 指定的一致。")

	ids := make(map[int]bool)
	for _, model := range companies {
		company := model.(*TestCompany)
		assert.Greater(t, company.Id, 0)
		ids[company.Id] = true
	}
	assert.Len(t, ids, 3, "批量构建的记录应当互不相同。")
}

func TestBuilderMake(t *testing.T) {
	company := Of(NewTestCompany()).
		With(1, "Owner").
		With(2, "Divisions").
		Make().(*TestCompany)

	assert.Equal(t, 0, company.Id, "未持久化构建不应写入根模型。")
	require.NotNil(t, company.Owner, "未持久化构建应当在内存中解析从属关联。")
	assert.Equal(t, 0, company.Owner.Id, "未持久化构建不应写入从属关联记录。")
	assert.Nil(t, company.Divisions, "未持久化构建应当跳过拥有关联。")
}

func TestBuilderConnection(t *testing.T) {
	company, err := Of(NewTestCompany()).
		With(1, "Divisions").
		On("archive").
		CreateE()
	require.NoError(t, err)

	root := company.(*TestCompany)
	archive := orm.NewOrmUsingDB("archive")
	exists := archive.QueryTable(NewTestCompany()).Filter("id", root.Id).Exist()
	assert.True(t, exists, "连接选择应当作用于根模型。")
	count, err := archive.LoadRelated(root, "Divisions")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "连接选择应当作用于关联记录。")
}

func TestBuilderErrors(t *testing.T) {
	_, err := Of(NewTestCompany()).With(1, "Bogus").CreateE()
	assert.Error(t, err, "请求不存在的关联应当返回错误。")

	_, err = Of(NewTestCompany()).With(2, "Owner").CreateE()
	assert.Error(t, err, "从属关联的请求数量大于 1 时应当返回错误。")

	_, err = Of(NewTestCompany()).WithModels("Owner", NewTestTag()).CreateE()
	assert.Error(t, err, "预置实例类型不匹配时应当返回错误。")
}

func TestBuilderPanics(t *testing.T) {
	assert.Panics(t, func() { Of(NewTestCompany()).Times(0) }, "数量非法时应当 panic。")
	assert.Panics(t, func() { Of(NewTestCompany()).With(0, "Divisions") }, "数量非法时应当 panic。")
	assert.Panics(t, func() { Of(NewTestCompany()).State("bogus") }, "未定义的状态应当 panic。")
	assert.Panics(t, func() { Of(NewTestCompany()).With(1, "Divisions..Employees") }, "路径包含空段时应当 panic。")
	assert.Panics(t, func() { Of(NewTestCompany()).With(1, 42) }, "路径类型非法时应当 panic。")
	assert.Panics(t, func() { Of(NewTestCompany()).WithModels("Divisions") }, "预置实例为空时应当 panic。")
}
