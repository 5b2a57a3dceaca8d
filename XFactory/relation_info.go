// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XFactory

import (
	"github.com/beego/beego/v2/client/orm"
)

// relationKind 定义了关联字段的类型。
type relationKind int

const (
	// relationNone 表示非关联字段。
	relationNone relationKind = iota

	// relationBelongsTo 表示从属关联（rel(fk) 或 rel(one)），外键位于当前模型。
	relationBelongsTo

	// relationHasMany 表示拥有关联（reverse(many) 或 reverse(one)），外键位于关联模型。
	relationHasMany

	// relationBelongsToMany 表示多对多关联（rel(m2m) 及其反向），通过中间表存储。
	relationBelongsToMany
)

// String 返回关联类型的名称。
func (kind relationKind) String() string {
	switch kind {
	case relationBelongsTo:
		return "belongs_to"
	case relationHasMany:
		return "has_many"
	case relationBelongsToMany:
		return "many_to_many"
	default:
		return "none"
	}
}

// relationInfo 定义了关联字段的描述信息。
type relationInfo struct {
	kind    relationKind    // 关联类型
	field   *beegoFieldInfo // 当前模型的关联字段
	reverse *beegoFieldInfo // 关联模型的对应字段（has_many 的外键字段或 m2m 反向的正向字段）
	related *modelInfo      // 关联模型的工厂信息，未注册时为 nil
	single  bool            // 是否为单值关联（rel(fk)、rel(one)、reverse(one)）
	inverse bool            // 是否为 m2m 的反向关联（中间表位于关联模型一侧）
}

// getRelationInfo 解析模型的关联字段。
// meta 为模型信息，name 为关联名称（支持 Go 字段名、小写形式或列名）。
// 函数从 beego/orm 的运行时字段信息中推断关联类型：
// rel(fk)/rel(one) 为从属关联，reverse(many)/reverse(one) 为拥有关联，
// rel(m2m) 及其反向为多对多关联。
// 返回关联描述信息，若字段不存在或不是关联字段则返回 nil。
func getRelationInfo(meta *modelInfo, name string) *relationInfo {
	fld := meta.findField(name)
	if fld == nil || (!fld.Rel && !fld.Reverse) {
		return nil
	}

	rel := &relationInfo{field: fld}
	if fld.RelModelInfo != nil {
		rel.related = getModelInfoByTable(fld.RelModelInfo.Table)
	}

	switch fld.FieldType {
	case orm.RelForeignKey, orm.RelOneToOne:
		rel.kind = relationBelongsTo
		rel.single = true
	case orm.RelManyToMany:
		rel.kind = relationBelongsToMany
	case orm.RelReverseOne:
		rel.kind = relationHasMany
		rel.single = true
		rel.reverse = fld.ReverseFieldInfo
	case orm.RelReverseMany:
		// 反向关联的对应字段为 m2m 时，该关联实为多对多的反向。
		m2m := fld.ReverseFieldInfoM2M
		if m2m == nil && fld.ReverseFieldInfo != nil && fld.ReverseFieldInfo.FieldType == orm.RelManyToMany {
			m2m = fld.ReverseFieldInfo
		}
		if m2m != nil {
			rel.kind = relationBelongsToMany
			rel.inverse = true
			rel.reverse = m2m
		} else {
			rel.kind = relationHasMany
			rel.reverse = fld.ReverseFieldInfo
		}
	default:
		return nil
	}
	return rel
}
