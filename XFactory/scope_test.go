// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XFactory

import (
	"sync"
	"testing"

	"github.com/beego/beego/v2/client/orm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeLifecycle(t *testing.T) {
	sid1 := Scope("default")
	sc := getScope()
	require.NotNil(t, sc, "作用域应当和当前 goroutine 绑定。")
	assert.Equal(t, "default", sc.alias)
	Defer()
	assert.Nil(t, getScope(), "作用域结束后应当被清理。")

	sid2 := Scope("default")
	Defer()
	assert.Greater(t, sid2, sid1, "作用域标识应当单调递增。")
}

func TestScopeSeed(t *testing.T) {
	Scope("default", 42)
	first := Faker().Name()
	Defer()

	Scope("default", 42)
	second := Faker().Name()
	Defer()

	assert.Equal(t, first, second, "相同随机种子的作用域应当生成相同的随机数据。")
	assert.NotNil(t, Faker(), "作用域外应当返回默认的随机数据生成器。")
}

func TestScopeConnection(t *testing.T) {
	Scope("archive")
	company := Of(NewTestCompany()).Create().(*TestCompany)
	Defer()

	archive := orm.NewOrmUsingDB("archive")
	exists := archive.QueryTable(NewTestCompany()).Filter("id", company.Id).Exist()
	assert.True(t, exists, "作用域的连接选择应当作用于构建器。")
}

func TestScopeIsolation(t *testing.T) {
	Scope("archive")
	defer Defer()

	var wg sync.WaitGroup
	wg.Add(1)
	var alias string
	go func() {
		defer wg.Done()
		if sc := getScope(); sc != nil {
			alias = sc.alias
		}
	}()
	wg.Wait()
	assert.Empty(t, alias, "作用域不应跨 goroutine 传播。")
}
