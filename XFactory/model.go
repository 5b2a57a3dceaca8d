// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XFactory

import (
	"fmt"
	"reflect"

	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XObject"
	"github.com/eframework-org/GO.UTIL/XString"
)

// IModel 定义了数据模型的基础接口。
// 实现此接口的类型可以注册工厂蓝图并参与关联图谱的构建。
type IModel interface {
	// Ctor 执行模型的构造初始化。
	// obj 为模型实例，必须是实现了 IModel 接口的结构体指针。
	// 此方法会在模型创建时自动调用，用于初始化模型的基本状态。
	Ctor(obj any)

	// AliasName 返回数据库别名。
	// 返回值用于标识不同的数据库连接。
	// 此方法必须由子类实现。
	AliasName() string

	// TableName 返回数据表名称。
	// 返回值用于标识数据库中的具体表。
	// 此方法必须由子类实现。
	TableName() string

	// ModelUnique 返回模型的唯一标识。
	// 返回值格式为 "数据库别名_表名"。
	// 用于在工厂注册表中唯一标识一个模型类型。
	ModelUnique() string

	// DataValue 获取指定字段的值。
	// field 为字段名称。
	// 返回字段值，若字段不存在则返回 nil。
	DataValue(field string) any

	// IsValid 检查或设置对象的有效性。
	// value 为可选的设置值，如果提供则设置对象的有效性状态。
	// 已持久化（或由调用方确认存在于远端）的对象应为有效状态。
	// 返回对象当前的有效性状态。
	IsValid(value ...bool) bool
}

// Model 实现了 IModel 接口的基础模型。
// T 为具体的模型类型，必须是结构体类型。
// 所有参与工厂构建的模型类型都应该嵌入此类型。
type Model[T any] struct {
	this        IModel `orm:"-" json:"-"` // 模型实例
	modelUnique string `orm:"-" json:"-"` // 模型标识
	isValid     bool   `orm:"-" json:"-"` // 有效标志
}

// Ctor 初始化模型实例。
// obj 必须实现 IModel 接口。
// 此方法会在模型创建时自动调用。
func (md *Model[T]) Ctor(obj any) {
	md.this = obj.(IModel)
	md.modelUnique = ""
	md.isValid = false
}

// AliasName 返回数据库别名。
// 此方法需要被子类重写，默认会触发 panic。
func (md *Model[T]) AliasName() string { XLog.Panic("Alias name is nil."); return "" }

// TableName 返回数据表名称。
// 此方法需要被子类重写，默认会触发 panic。
func (md *Model[T]) TableName() string { XLog.Panic("Table name is nil."); return "" }

// ModelUnique 返回模型的唯一标识。
// 返回值格式为 "数据库别名_表名"。
func (md *Model[T]) ModelUnique() string {
	if XString.IsEmpty(md.modelUnique) {
		md.modelUnique = fmt.Sprintf("%v_%v", md.this.AliasName(), md.this.TableName())
	}
	return md.modelUnique
}

// DataValue 获取指定字段的值。
// field 为字段名称。
// 返回字段值，若字段不存在则返回 nil。
func (md *Model[T]) DataValue(field string) any {
	vtp := reflect.ValueOf(md.this).Elem()
	fld := vtp.FieldByName(field)
	if fld.IsValid() {
		return fld.Interface()
	}
	return nil
}

// IsValid 检查或设置对象的有效性。
// value 为可选的设置值。
// 返回对象是否有效。
func (md *Model[T]) IsValid(value ...bool) bool {
	if len(value) > 0 {
		md.isValid = value[0]
	}
	return md.isValid
}

// Json 将对象转换为 JSON 字符串。
// 返回 JSON 格式的字符串表示。
func (md *Model[T]) Json() string {
	result, _ := XObject.ToJson(md.this)
	return result
}
