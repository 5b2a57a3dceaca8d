// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XFactory

import (
	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/google/uuid"
)

// Blueprint 定义了模型的属性蓝图。
// model 为待填充的模型实例，seq 为该模型类型的构建序号（从 1 开始单调递增）。
// 蓝图在每次构建新实例时被调用，通常结合 Faker 生成随机属性。
type Blueprint func(model IModel, seq int64)

// Mutator 定义了模型的属性修改器。
// 命名状态、构建器的属性覆盖和关联请求的属性覆盖均以此形式表达。
type Mutator func(model IModel)

// Attrs 将字段值映射转换为属性修改器。
// attrs 的键为字段名称（支持列名形式），值为字段值。
// 未注册模型或未知字段会记录错误日志并跳过该字段。
func Attrs(attrs map[string]any) Mutator {
	return func(model IModel) {
		meta := getModelInfo(model)
		if meta == nil {
			XLog.Error("XFactory.Attrs: model of %v was not registered.", model.ModelUnique())
			return
		}
		for field, value := range attrs {
			meta.setFieldValue(model, field, value)
		}
	}
}

// UniqueID 返回一个全局唯一的字符串标识。
// 供蓝图生成唯一属性（如编号、令牌等）使用。
func UniqueID() string {
	return uuid.NewString()
}

// build 按照蓝图、预设、状态和修改器的顺序构建模型的一个新实例。
// states 为命名状态列表，mutators 为属性修改器列表。
// 返回新的模型实例。
func (mi *modelInfo) build(states []string, mutators []Mutator) IModel {
	model := mi.spawn()
	mi.Blueprint(model, mi.next())
	if preset := presetFor(mi); preset != nil {
		for field, value := range preset {
			mi.setFieldValue(model, field, value)
		}
	}
	for _, name := range states {
		mi.States[name](model)
	}
	for _, mutator := range mutators {
		mutator(model)
	}
	sharedMetrics.made.WithLabelValues(mi.Table).Inc()
	return model
}
