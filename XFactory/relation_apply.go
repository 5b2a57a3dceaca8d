// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XFactory

import (
	"fmt"

	"github.com/beego/beego/v2/client/orm"
)

// materialize 准备关联请求的模型实例列表。
// 预置实例在前，不足部分由关联模型的工厂补足（补足语义）。
// 属性修改器对预置实例和新建实例统一应用。
// 返回模型实例列表和错误信息。
func materialize(rel *relationInfo, req *relationRequest) ([]IModel, error) {
	if rel.related == nil {
		return nil, fmt.Errorf("factory of %v was not registered", rel.field.RelModelInfo.Table)
	}

	total := req.total()
	if rel.single && total > 1 {
		return nil, fmt.Errorf("relation of %v accepts a single record, got %v", req.name, total)
	}

	models := make([]IModel, 0, total)
	for _, instance := range req.instances {
		supplied := getModelInfo(instance)
		if supplied == nil || supplied.Table != rel.related.Table {
			return nil, fmt.Errorf("instance of %T doesn't match relation of %v", instance, req.name)
		}
		for _, mutator := range req.mutators {
			mutator(instance)
		}
		models = append(models, instance)
	}
	for i := len(models); i < total; i++ {
		models = append(models, rel.related.build(nil, req.mutators))
	}
	return models, nil
}

// resolveGraph 递归解析关联请求树并持久化模型图谱。
// 解析顺序为：从属关联（写入关联记录并填充外键字段）、模型自身（未持久化时写入）、
// 拥有关联（填充子记录的外键字段后写入）、多对多关联（写入关联记录后建立中间表记录）。
// ormer 为选定连接的 orm 实例，meta 为模型信息，reqs 为关联请求树。
// 返回错误信息。
func resolveGraph(ormer orm.Ormer, meta *modelInfo, model IModel, reqs requestSet) error {
	// 从属关联先于模型自身写入，以便外键字段就绪。
	for name, req := range reqs {
		rel := getRelationInfo(meta, name)
		if rel == nil {
			return fmt.Errorf("relation of %v was not found in %v", name, meta.Table)
		}
		if rel.kind != relationBelongsTo {
			continue
		}
		models, err := materialize(rel, req)
		if err != nil {
			return err
		}
		related := models[0]
		if err := resolveGraph(ormer, rel.related, related, req.children); err != nil {
			return err
		}
		if !meta.setFieldValue(model, rel.field.Name, related) {
			return fmt.Errorf("field of %v wasn't settable in %v", rel.field.Name, meta.Table)
		}
		sharedMetrics.linked.WithLabelValues(rel.kind.String()).Inc()
	}

	if !meta.persisted(model) {
		if _, err := ormer.Insert(model); err != nil {
			return fmt.Errorf("insert of %v failed: %w", meta.Table, err)
		}
		model.IsValid(true)
		sharedMetrics.persisted.WithLabelValues(meta.Table).Inc()
	}

	for name, req := range reqs {
		rel := getRelationInfo(meta, name)
		if rel == nil || rel.kind == relationBelongsTo {
			continue
		}
		models, err := materialize(rel, req)
		if err != nil {
			return err
		}

		switch rel.kind {
		case relationHasMany:
			if rel.reverse == nil {
				return fmt.Errorf("reverse field of %v was not resolved in %v", name, meta.Table)
			}
			for _, child := range models {
				if !rel.related.setFieldValue(child, rel.reverse.Name, model) {
					return fmt.Errorf("field of %v wasn't settable in %v", rel.reverse.Name, rel.related.Table)
				}
				// 已持久化的预置实例改写外键列完成重新归属。
				attached := rel.related.persisted(child)
				if err := resolveGraph(ormer, rel.related, child, req.children); err != nil {
					return err
				}
				if attached {
					if _, err := ormer.Update(child, rel.reverse.Column); err != nil {
						return fmt.Errorf("update of %v failed: %w", rel.related.Table, err)
					}
				}
				sharedMetrics.linked.WithLabelValues(rel.kind.String()).Inc()
			}
		case relationBelongsToMany:
			for _, related := range models {
				if err := resolveGraph(ormer, rel.related, related, req.children); err != nil {
					return err
				}
			}
			if err := attachPivot(ormer, rel, model, models); err != nil {
				return err
			}
			sharedMetrics.linked.WithLabelValues(rel.kind.String()).Add(float64(len(models)))
		}
	}
	return nil
}

// attachPivot 通过 beego/orm 的 QueryM2M 建立多对多关联的中间表记录。
// 反向关联（中间表定义于关联模型一侧）逐条从关联模型发起。
func attachPivot(ormer orm.Ormer, rel *relationInfo, model IModel, models []IModel) error {
	if rel.inverse {
		if rel.reverse == nil {
			return fmt.Errorf("reverse field of %v was not resolved", rel.field.Name)
		}
		for _, related := range models {
			if _, err := ormer.QueryM2M(related, rel.reverse.Name).Add(model); err != nil {
				return fmt.Errorf("attach of %v failed: %w", rel.field.Name, err)
			}
		}
		return nil
	}

	values := make([]any, 0, len(models))
	for _, related := range models {
		values = append(values, related)
	}
	if _, err := ormer.QueryM2M(model, rel.field.Name).Add(values...); err != nil {
		return fmt.Errorf("attach of %v failed: %w", rel.field.Name, err)
	}
	return nil
}

// resolveShallow 在内存中解析从属关联，不进行持久化。
// 拥有关联和多对多关联依赖父级主键，在未持久化构建中被跳过。
// 返回错误信息。
func resolveShallow(meta *modelInfo, model IModel, reqs requestSet) error {
	for name, req := range reqs {
		rel := getRelationInfo(meta, name)
		if rel == nil {
			return fmt.Errorf("relation of %v was not found in %v", name, meta.Table)
		}
		if rel.kind != relationBelongsTo {
			continue
		}
		models, err := materialize(rel, req)
		if err != nil {
			return err
		}
		related := models[0]
		if err := resolveShallow(rel.related, related, req.children); err != nil {
			return err
		}
		if !meta.setFieldValue(model, rel.field.Name, related) {
			return fmt.Errorf("field of %v wasn't settable in %v", rel.field.Name, meta.Table)
		}
	}
	return nil
}
