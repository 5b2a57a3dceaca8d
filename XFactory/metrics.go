// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XFactory

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metricsInfo 定义了全局的统计信息。
type metricsInfo struct {
	made      *prometheus.CounterVec // 构建的模型数量，按表名统计
	persisted *prometheus.CounterVec // 持久化的模型数量，按表名统计
	linked    *prometheus.CounterVec // 建立的关联数量，按关联类型统计
}

var sharedMetrics = &metricsInfo{
	made: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xfactory_model_made_total",
		Help: "Total number of models made by factories.",
	}, []string{"table"}),
	persisted: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xfactory_model_persisted_total",
		Help: "Total number of models persisted by factories.",
	}, []string{"table"}),
	linked: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xfactory_relation_linked_total",
		Help: "Total number of relations linked by factories.",
	}, []string{"kind"}),
}

func init() {
	prometheus.MustRegister(sharedMetrics.made, sharedMetrics.persisted, sharedMetrics.linked)
}

// Metrics 提供了统计信息的全局访问点。
func Metrics() *metricsInfo {
	return sharedMetrics
}

// Made 返回指定表的模型构建计数器。
func (ms *metricsInfo) Made(table string) prometheus.Counter {
	return ms.made.WithLabelValues(table)
}

// Persisted 返回指定表的模型持久化计数器。
func (ms *metricsInfo) Persisted(table string) prometheus.Counter {
	return ms.persisted.WithLabelValues(table)
}

// Linked 返回指定关联类型的关联建立计数器。
func (ms *metricsInfo) Linked(kind string) prometheus.Counter {
	return ms.linked.WithLabelValues(kind)
}
