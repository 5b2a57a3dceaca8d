// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XFactory

import (
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/beego/beego/v2/client/orm"
	"github.com/eframework-org/GO.UTIL/XLog"
)

//go:linkname defaultModelCache github.com/beego/beego/v2/client/orm.defaultModelCache
var defaultModelCache *any

// beegoModelCache 是 beego/orm 的模型缓存实例。
var beegoModelCache *beegoModelMap = (*beegoModelMap)(unsafe.Pointer(reflect.ValueOf(defaultModelCache).UnsafePointer()))

// beegoModelMap 定义了 beego/orm 的内部模型映射结构。
type beegoModelMap struct {
	Orders          []string                   // 模型注册顺序
	Cache           map[string]*beegoModelInfo // 按表名索引的模型信息
	CacheByFullName map[string]*beegoModelInfo // 按完整名称索引的模型信息
	BootstrapOnce   *sync.Once                 // 初始化同步锁
}

// beegoModelInfo 定义了 beego/orm 的内部模型信息结构。
type beegoModelInfo struct {
	Manual    bool           // 是否手动注册
	IsThrough bool           // 是否为中间表
	Pkg       string         // 包名
	Name      string         // 模型名称
	FullName  string         // 完整名称
	Table     string         // 表名
	Model     any            // 模型实例
	Fields    *beegoFieldMap // 字段映射
	AddrField reflect.Value  // 模型地址
	Uniques   []string       // 唯一索引
}

// beegoFieldMap 定义了 beego/orm 的内部字段映射结构。
type beegoFieldMap struct {
	Pk            *beegoFieldInfo            // 主键字段
	Columns       map[string]*beegoFieldInfo // 按列名索引的字段
	Fields        map[string]*beegoFieldInfo // 按字段名索引的字段
	FieldsLow     map[string]*beegoFieldInfo // 按小写字段名索引的字段
	FieldsByType  map[int][]*beegoFieldInfo  // 按类型索引的字段
	FieldsRel     []*beegoFieldInfo          // 关联字段
	FieldsReverse []*beegoFieldInfo          // 反向关联字段
	FieldsDB      []*beegoFieldInfo          // 数据库字段
	Rels          []*beegoFieldInfo          // 所有关联字段
	Orders        []string                   // 字段顺序
	DbCols        []string                   // 数据库列名
}

// beegoFieldInfo 定义了 beego/orm 的内部字段信息结构。
type beegoFieldInfo struct {
	DbCol               bool                // 是否为数据库列（外键和一对一关系）
	InModel             bool                // 是否在模型中
	Auto                bool                // 是否自增
	Pk                  bool                // 是否为主键
	Null                bool                // 是否可为空
	Index               bool                // 是否有索引
	Unique              bool                // 是否唯一
	ColDefault          bool                // 是否有默认值标签
	ToText              bool                // 是否转换为文本
	AutoNow             bool                // 是否自动更新时间
	AutoNowAdd          bool                // 是否自动添加时间
	Rel                 bool                // 是否为关联字段（外键、一对一、多对多）
	Reverse             bool                // 是否为反向关联
	IsFielder           bool                // 是否实现 Fielder 接口
	Mi                  *beegoModelInfo     // 所属模型信息
	FieldIndex          []int               // 字段索引
	FieldType           int                 // 字段类型
	Name                string              // 字段名
	FullName            string              // 完整名称
	Column              string              // 列名
	AddrValue           reflect.Value       // 字段地址
	Sf                  reflect.StructField // 结构体字段
	Initial             string              // 默认值
	Size                int                 // 字段大小
	ReverseField        string              // 反向关联字段名
	ReverseFieldInfo    *beegoFieldInfo     // 反向关联字段信息
	ReverseFieldInfoTwo *beegoFieldInfo     // 双向关联字段信息
	ReverseFieldInfoM2M *beegoFieldInfo     // 多对多关联字段信息
	RelTable            string              // 关联表名
	RelThrough          string              // 中间表名
	RelThroughModelInfo *beegoModelInfo     // 中间表模型信息
	RelModelInfo        *beegoModelInfo     // 关联模型信息
	Digits              int                 // 数字位数
	Decimals            int                 // 小数位数
	OnDelete            string              // 删除时操作
	Description         string              // 字段描述
	TimePrecision       *int                // 时间精度
	DbType              string              // 数据库类型
}

// modelInfo 定义了模型的工厂信息。
type modelInfo struct {
	*beegoModelInfo           // 继承 beego/orm 的模型信息
	Alias           string    // 数据库别名
	Prototype       IModel    // 注册时的模型实例
	Blueprint       Blueprint // 属性蓝图
	States          map[string]Mutator
	sequence        int64 // 构建序号
}

// modelCache 存储所有已注册模型的信息。
var modelCache map[string]*modelInfo = make(map[string]*modelInfo)

// modelCacheByTable 按表名索引已注册模型的信息，用于关联模型的反向查找。
var modelCacheByTable map[string]*modelInfo = make(map[string]*modelInfo)

// modelCacheMu 用于保护模型缓存的互斥锁。
var modelCacheMu sync.Mutex

// getModelInfo 获取指定模型的信息。
// model 为模型实例。
// 返回模型信息，如果模型未注册则返回 nil。
func getModelInfo(model IModel) *modelInfo {
	if model != nil {
		return modelCache[model.ModelUnique()]
	}
	return nil
}

// getModelInfoByTable 按表名获取指定模型的信息。
// table 为数据表名称。
// 返回模型信息，如果模型未注册则返回 nil。
func getModelInfoByTable(table string) *modelInfo {
	return modelCacheByTable[table]
}

// Register 注册一个模型及其属性蓝图。
// model 为模型实例。
// blueprint 为属性蓝图，在构建新实例时被调用以填充默认属性。
// 如果模型为 nil、蓝图为 nil 或模型已注册，将触发 panic。
func Register(model IModel, blueprint Blueprint) {
	if model == nil {
		XLog.Panic("XFactory.Register: nil model instance.")
		return
	}
	if blueprint == nil {
		XLog.Panic("XFactory.Register: nil blueprint of %v.", model.ModelUnique())
		return
	}

	modelCacheMu.Lock()
	defer modelCacheMu.Unlock()

	id := model.ModelUnique()
	if _, ok := modelCache[id]; ok {
		XLog.Panic("XFactory.Register: dumplicated model of %v.", id)
		return
	}
	orm.RegisterModel(model)
	meta := &modelInfo{
		beegoModelInfo: beegoModelCache.Cache[model.TableName()],
		Alias:          model.AliasName(),
		Prototype:      model,
		Blueprint:      blueprint,
		States:         make(map[string]Mutator),
	}
	modelCache[id] = meta
	modelCacheByTable[model.TableName()] = meta
}

// State 为已注册的模型定义一个命名状态。
// model 为模型实例，name 为状态名称，mutator 为状态的属性修改器。
// 状态在蓝图和预设之后、构建器的属性覆盖之前应用。
// 如果模型未注册或状态名称重复，将触发 panic。
func State(model IModel, name string, mutator Mutator) {
	if mutator == nil {
		XLog.Panic("XFactory.State: nil mutator of %v.", name)
		return
	}

	modelCacheMu.Lock()
	defer modelCacheMu.Unlock()

	meta := modelCache[model.ModelUnique()]
	if meta == nil {
		XLog.Panic("XFactory.State: model of %v was not registered.", model.ModelUnique())
		return
	}
	if _, ok := meta.States[name]; ok {
		XLog.Panic("XFactory.State: dumplicated state of %v in %v.", name, model.ModelUnique())
		return
	}
	meta.States[name] = mutator
}

// Cleanup 重置模型缓存。
// 此操作会清空所有已注册的模型信息及其预设数据。
func Cleanup() {
	modelCacheMu.Lock()
	defer modelCacheMu.Unlock()

	modelCache = make(map[string]*modelInfo)
	modelCacheByTable = make(map[string]*modelInfo)
	presetMutex.Lock()
	presetCache = make(map[string]map[string]any)
	presetMutex.Unlock()
	orm.ResetModelCache()
}

// next 返回模型的下一个构建序号。
// 序号从 1 开始单调递增，供蓝图生成唯一属性使用。
func (mi *modelInfo) next() int64 {
	return atomic.AddInt64(&mi.sequence, 1)
}

// spawn 创建模型的一个新实例并完成构造初始化。
// 返回新的模型实例。
func (mi *modelInfo) spawn() IModel {
	rtype := reflect.TypeOf(mi.Prototype).Elem()
	obj := reflect.New(rtype).Interface()
	model := obj.(IModel)
	model.Ctor(obj)
	return model
}

// findField 按名称查找模型的字段信息。
// name 可以为 Go 字段名（Owner）、小写形式（owner）或列名（owner_id）。
// 返回字段信息，若字段不存在则返回 nil。
func (mi *modelInfo) findField(name string) *beegoFieldInfo {
	if mi.Fields == nil {
		return nil
	}
	if fld, ok := mi.Fields.Fields[name]; ok {
		return fld
	}
	if fld, ok := mi.Fields.FieldsLow[strings.ToLower(name)]; ok {
		return fld
	}
	if fld, ok := mi.Fields.Columns[name]; ok {
		return fld
	}
	return nil
}

// setFieldValue 通过反射设置模型的字段值。
// field 为字段名称（支持列名形式），value 为字段值。
// 返回是否设置成功。
func (mi *modelInfo) setFieldValue(model IModel, field string, value any) bool {
	fld := mi.findField(field)
	name := field
	if fld != nil {
		name = fld.Name
	}
	target := reflect.ValueOf(model).Elem().FieldByName(name)
	if !target.IsValid() || !target.CanSet() {
		XLog.Error("XFactory.setFieldValue(%v): field of %v was not found.", mi.Table, field)
		return false
	}
	if value == nil {
		target.Set(reflect.Zero(target.Type()))
		return true
	}
	val := reflect.ValueOf(value)
	switch {
	case val.Type().AssignableTo(target.Type()):
		target.Set(val)
	// 数值到字符串的转换会产生码点字符串，不视为兼容。
	case val.Type().ConvertibleTo(target.Type()) && !(target.Kind() == reflect.String && val.Kind() != reflect.String):
		target.Set(val.Convert(target.Type()))
	default:
		XLog.Error("XFactory.setFieldValue(%v): value of type %T wasn't assignable to field %v.", mi.Table, value, name)
		return false
	}
	return true
}

// persisted 判断模型实例是否已持久化。
// 有效标记（IsValid）优先；对于自增主键，主键非零值视为已持久化。
func (mi *modelInfo) persisted(model IModel) bool {
	if model.IsValid() {
		return true
	}
	if mi.Fields != nil && mi.Fields.Pk != nil && mi.Fields.Pk.Auto {
		pk := model.DataValue(mi.Fields.Pk.Name)
		if pk != nil && !reflect.ValueOf(pk).IsZero() {
			return true
		}
	}
	return false
}
