// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XFactory

import (
	"sync"
	"sync/atomic"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XTime"
	"github.com/petermattis/goid"
)

var (
	// scopeID 是作用域 ID 的原子计数器，用于生成唯一的作用域标识。
	scopeID int64

	// scopeMap 存储了作用域映射，键为 goroutine ID，值为 scope 实例。
	scopeMap sync.Map

	// scopePool 是作用域对象池，用于复用 scope 实例。
	scopePool = sync.Pool{New: func() any { return new(scope) }}

	// sharedFaker 是默认的随机数据生成器，作用域外的构建使用此实例。
	sharedFaker = gofakeit.New(0)
)

// scope 定义了工厂作用域的信息，用于管理构建的生命周期。
type scope struct {
	id    int             // 作用域标识
	time  int             // 开始时间
	alias string          // 数据库别名
	faker *gofakeit.Faker // 随机数据生成器
}

// reset 重置作用域状态。
func (sc *scope) reset() {
	sc.id = 0
	sc.time = 0
	sc.alias = ""
	sc.faker = nil
}

// getScope 根据 goroutine ID 获取作用域实例。
func getScope(gid ...int64) *scope {
	var ggid int64 = 0
	if len(gid) > 0 {
		ggid = gid[0]
	} else {
		ggid = goid.Get()
	}
	var sc *scope
	value, _ := scopeMap.Load(ggid)
	if value != nil {
		sc = value.(*scope)
	}
	return sc
}

// Scope 开始当前 goroutine 的工厂作用域。
// alias 是可选的数据库别名，作用域内创建的构建器默认使用此连接。
// seed 为可选的随机种子，用于生成可复现的随机数据。
// 并返回新分配的作用域 ID。
//
// 使用示例：
//
//	sid := Scope("mydb")  // 开始工厂作用域。
//	defer Defer()         // 结束工厂作用域。
func Scope(alias string, seed ...int64) int {
	gid := goid.Get()
	sid := int(atomic.AddInt64(&scopeID, 1))
	sc := scopePool.Get().(*scope)
	sc.id = sid
	sc.time = XTime.GetMicrosecond()
	sc.alias = alias
	if len(seed) > 0 {
		sc.faker = gofakeit.New(seed[0])
	} else {
		sc.faker = gofakeit.New(0)
	}
	scopeMap.Store(gid, sc)
	XLog.Info("XFactory.Scope: scope of %v has been started.", sid)
	return sid
}

// Defer 结束当前 goroutine 的工厂作用域。
// 函数获取当前 goroutine ID 并清理对应的作用域实例。
// 此函数应通过 defer 调用，确保每个 Scope 都有对应的 Defer。
func Defer() {
	gid := goid.Get()
	value, _ := scopeMap.LoadAndDelete(gid)
	if value == nil {
		XLog.Warn("XFactory.Defer: scope was not found.")
		return
	}
	sc := value.(*scope)
	XLog.Info("XFactory.Defer: scope of %v has been finished, elapsed %v microsecond(s).", sc.id, XTime.GetMicrosecond()-sc.time)
	sc.reset()
	scopePool.Put(sc)
}

// Faker 返回当前作用域的随机数据生成器。
// 若当前 goroutine 没有活跃的作用域，则返回默认实例。
// 蓝图应通过此函数获取生成器，以便作用域的随机种子生效。
func Faker() *gofakeit.Faker {
	if sc := getScope(); sc != nil {
		return sc.faker
	}
	return sharedFaker
}
