// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XFactory

import (
	"github.com/beego/beego/v2/client/orm"
	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XString"
)

// Builder 定义了模型图谱的流式构建器。
// 构建器记录根模型的数量、状态、属性覆盖、关联请求和连接选择，
// 在 Make/Create 时递归解析关联请求树并委托 beego/orm 完成持久化。
type Builder struct {
	meta     *modelInfo // 根模型信息
	times    int        // 根模型数量
	alias    string     // 数据库别名（连接选择）
	states   []string   // 命名状态列表
	mutators []Mutator  // 属性修改器列表
	requests requestSet // 关联请求树
}

// Of 创建指定模型的构建器。
// model 为已注册的模型实例，仅用于定位工厂信息，不会成为构建结果。
// 如果模型未注册，将触发 panic。
func Of(model IModel) *Builder {
	if model == nil {
		XLog.Panic("XFactory.Of: nil model instance.")
		return nil
	}
	meta := getModelInfo(model)
	if meta == nil {
		XLog.Panic("XFactory.Of: model of %v was not registered.", model.ModelUnique())
		return nil
	}
	return &Builder{
		meta:     meta,
		times:    1,
		requests: make(requestSet),
	}
}

// Times 设置根模型的数量。
// n 必须大于 0，否则触发 panic。
func (bd *Builder) Times(n int) *Builder {
	if n < 1 {
		XLog.Panic("XFactory.Times(%v): count must be positive: %v.", bd.meta.Table, n)
		return bd
	}
	bd.times = n
	return bd
}

// State 追加命名状态。
// names 为状态名称，按声明顺序应用。
// 如果状态未定义，将触发 panic。
func (bd *Builder) State(names ...string) *Builder {
	for _, name := range names {
		if _, ok := bd.meta.States[name]; !ok {
			XLog.Panic("XFactory.State(%v): state of %v was not defined.", bd.meta.Table, name)
			return bd
		}
	}
	bd.states = append(bd.states, names...)
	return bd
}

// Attr 追加字段值覆盖。
// attrs 的键为字段名称（支持列名形式），值为字段值。
func (bd *Builder) Attr(attrs map[string]any) *Builder {
	bd.mutators = append(bd.mutators, Attrs(attrs))
	return bd
}

// Mutate 追加属性修改器。
func (bd *Builder) Mutate(mutators ...Mutator) *Builder {
	bd.mutators = append(bd.mutators, mutators...)
	return bd
}

// With 请求构建关联记录。
// count 为请求数量，作用于路径末端的关联（中间关联按需隐式创建）。
// path 为关联路径，支持点分字符串（"Divisions.Employees"）和数组（[]string{...}）两种形式。
// mutators 为末端关联的属性修改器。
// 同一路径的重复请求会被合批：数量累加，修改器按调用顺序追加。
func (bd *Builder) With(count int, path any, mutators ...Mutator) *Builder {
	if count < 1 {
		XLog.Panic("XFactory.With(%v): count must be positive: %v.", bd.meta.Table, count)
		return bd
	}
	bd.requests.merge(parsePath(path), count, mutators, nil)
	return bd
}

// WithModels 为关联路径预置模型实例。
// path 为关联路径，instances 为预置实例。
// 预置实例计入请求数量（补足语义）：已持久化的实例仅做关联，不会被重复写入；
// 未持久化的实例会在解析时写入。
func (bd *Builder) WithModels(path any, instances ...IModel) *Builder {
	if len(instances) == 0 {
		XLog.Panic("XFactory.WithModels(%v): empty instances.", bd.meta.Table)
		return bd
	}
	bd.requests.merge(parsePath(path), 0, nil, instances)
	return bd
}

// On 设置数据库别名（连接选择）。
// 优先级为 On > 作用域别名 > 模型别名。
func (bd *Builder) On(alias string) *Builder {
	bd.alias = alias
	return bd
}

// connection 解析构建器实际使用的数据库别名。
func (bd *Builder) connection() string {
	if !XString.IsEmpty(bd.alias) {
		return bd.alias
	}
	if sc := getScope(); sc != nil && !XString.IsEmpty(sc.alias) {
		return sc.alias
	}
	return bd.meta.Alias
}

// Make 构建一个未持久化的根模型。
// 从属关联在内存中解析（填充关联字段，不写入数据库），
// 拥有关联和多对多关联的请求会被忽略（它们依赖父级主键）。
// 返回根模型实例，如果发生错误则返回 nil。
func (bd *Builder) Make() IModel {
	models := bd.MakeMany()
	if len(models) == 0 {
		return nil
	}
	return models[0]
}

// MakeMany 构建多个未持久化的根模型。
// 语义与 Make 一致，数量由 Times 指定。
// 返回根模型实例列表，如果发生错误则返回空列表。
func (bd *Builder) MakeMany() []IModel {
	orm.BootStrap()
	models := make([]IModel, 0, bd.times)
	for i := 0; i < bd.times; i++ {
		model := bd.meta.build(bd.states, bd.mutators)
		if err := resolveShallow(bd.meta, model, bd.requests); err != nil {
			XLog.Error("XFactory.MakeMany(%v): %v", bd.meta.Table, err)
			return nil
		}
		models = append(models, model)
	}
	return models
}

// Create 构建并持久化一个根模型及其关联图谱。
// 返回根模型实例，如果发生错误则返回 nil。
func (bd *Builder) Create() IModel {
	model, err := bd.CreateE()
	if err != nil {
		XLog.Error("XFactory.Create(%v): %v", bd.meta.Table, err)
		return nil
	}
	return model
}

// CreateE 构建并持久化一个根模型及其关联图谱。
// 返回根模型实例和错误信息。
func (bd *Builder) CreateE() (IModel, error) {
	models, err := bd.CreateManyE()
	if err != nil {
		return nil, err
	}
	return models[0], nil
}

// CreateMany 构建并持久化多个根模型及其关联图谱。
// 返回根模型实例列表，如果发生错误则返回空列表。
func (bd *Builder) CreateMany() []IModel {
	models, err := bd.CreateManyE()
	if err != nil {
		XLog.Error("XFactory.CreateMany(%v): %v", bd.meta.Table, err)
		return nil
	}
	return models
}

// CreateManyE 构建并持久化多个根模型及其关联图谱。
// 每个根模型独立解析关联请求树：从属关联先于根模型写入，
// 拥有关联和多对多关联在根模型写入后建立。
// 解析中途发生错误时，已写入的根模型及其关联不会被回滚。
// 返回根模型实例列表和错误信息。
func (bd *Builder) CreateManyE() ([]IModel, error) {
	orm.BootStrap()
	ormer := orm.NewOrmUsingDB(bd.connection())
	models := make([]IModel, 0, bd.times)
	for i := 0; i < bd.times; i++ {
		model := bd.meta.build(bd.states, bd.mutators)
		if err := resolveGraph(ormer, bd.meta, model, bd.requests); err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	return models, nil
}
