// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XFactory

import (
	"strings"

	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XString"
)

// relationRequest 定义了关联请求树的节点。
// 每个节点对应一个关联名称，记录请求数量、属性修改器、预置实例和子请求。
type relationRequest struct {
	name      string                      // 关联名称
	count     int                         // 显式请求数量（0 表示未显式指定）
	mutators  []Mutator                   // 属性修改器
	instances []IModel                    // 预置实例
	children  map[string]*relationRequest // 子请求，按关联名称索引
}

// requestSet 定义了关联请求树的根容器，按首段关联名称索引。
type requestSet map[string]*relationRequest

// parsePath 将点分路径解析为关联名称序列。
// path 支持字符串形式（"Divisions.Employees"）和数组形式（[]string{"Divisions", "Employees"}）。
// 路径为空或包含空段时触发 panic。
// 返回关联名称序列。
func parsePath(path any) []string {
	var segments []string
	switch val := path.(type) {
	case string:
		segments = strings.Split(val, ".")
	case []string:
		segments = val
	default:
		XLog.Panic("XFactory.parsePath: invalid path type: %T", path)
		return nil
	}

	if len(segments) == 0 {
		XLog.Panic("XFactory.parsePath: empty path.")
		return nil
	}
	for _, segment := range segments {
		if XString.IsEmpty(strings.TrimSpace(segment)) {
			XLog.Panic("XFactory.parsePath('%v'): empty segment.", path)
			return nil
		}
	}
	return segments
}

// node 获取或创建指定路径的请求节点。
// 中间节点按需隐式创建，显式数量保持为 0。
// 返回路径末端的请求节点。
func (rs requestSet) node(segments []string) *relationRequest {
	name := segments[0]
	req := rs[name]
	if req == nil {
		req = &relationRequest{name: name, children: make(map[string]*relationRequest)}
		rs[name] = req
	}
	if len(segments) == 1 {
		return req
	}
	return requestSet(req.children).node(segments[1:])
}

// merge 将一次关联请求合并至请求树。
// 同一路径的重复请求会被合批：数量累加，修改器与预置实例按调用顺序追加。
func (rs requestSet) merge(segments []string, count int, mutators []Mutator, instances []IModel) {
	req := rs.node(segments)
	req.count += count
	req.mutators = append(req.mutators, mutators...)
	req.instances = append(req.instances, instances...)
}

// total 返回节点的实际构建总量。
// 显式数量与预置实例取较大值（补足语义：预置实例计入数量，不足部分由工厂新建），
// 未显式指定数量时默认为 1。
func (req *relationRequest) total() int {
	count := req.count
	if count < 1 {
		count = 1
	}
	if len(req.instances) > count {
		count = len(req.instances)
	}
	return count
}
