// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
XFactory 基于 Beego 的 ORM 关系系统实现了测试数据工厂，通过流式构建器声明式地创建关联记录图谱。

功能特性

  - 属性蓝图：注册模型的属性蓝图，结合随机数据生成器填充默认属性
  - 关联图谱：解析点分路径的关联请求，递归构建从属、拥有和多对多关联
  - 连接选择：通过首选项配置数据源，支持构建器和作用域两级连接选择

使用手册

1. 数据源配置

配置说明：
  - 配置键名：Factory/Source/<数据库类型>/<数据库别名>
  - 支持 MySQL、PostgreSQL、SQLite3 等（Beego ORM 支持的类型）
  - 配置参数：
  - Addr：数据源地址
  - Pool：连接池大小
  - Conn：最大连接数

配置示例：

	{
	    "Factory/Source/MySQL/default": {
	        "Addr": "root:123456@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&loc=Local",
	        "Pool": 1,
	        "Conn": 1
	    },
	    "Factory/Source/SQLite3/archive": {
	        "Addr": "file:archive.db?cache=shared&mode=rwc",
	        "Pool": 1,
	        "Conn": 1
	    }
	}

2. 模型定义

模型嵌入基础模型并实现必要的接口方法，关联字段使用 Beego ORM 的关系标签：

	// 定义公司模型
	type Company struct {
	    XFactory.Model[Company]
	    Id        int          `orm:"column(id);auto"`
	    Name      string       `orm:"column(name);size(100)"`
	    Owner     *User        `orm:"column(owner_id);rel(fk);null"` // 从属关联
	    Divisions []*Division  `orm:"reverse(many)"`                 // 拥有关联
	    Tags      []*Tag       `orm:"rel(m2m)"`                      // 多对多关联
	}

	// 实现必要的接口方法
	func (c *Company) AliasName() string { return "default" }
	func (c *Company) TableName() string { return "company" }

	// 创建模型实例的工厂方法
	func NewCompany() *Company {
	    return XObject.New[Company]()
	}

3. 工厂注册

注册模型的属性蓝图，蓝图在每次构建新实例时被调用：

	XFactory.Register(NewCompany(), func(model XFactory.IModel, seq int64) {
	    company := model.(*Company)
	    company.Name = XFactory.Faker().Company()
	})

	// 定义命名状态
	XFactory.State(NewCompany(), "inactive", func(model XFactory.IModel) {
	    model.(*Company).Active = false
	})

4. 图谱构建

通过流式构建器声明关联图谱，关联类型由 Beego ORM 的运行时字段信息推断：

	// 一个公司：一个所有者、三个部门、每个部门两名员工
	company := XFactory.Of(NewCompany()).
	    With(1, "Owner").
	    With(2, "Divisions.Employees").
	    With(3, "Divisions").
	    Create().(*Company)

	// 批量构建
	companies := XFactory.Of(NewCompany()).Times(5).CreateMany()

	// 未持久化构建（仅解析从属关联）
	company := XFactory.Of(NewCompany()).With(1, "Owner").Make().(*Company)

	// 属性覆盖和连接选择
	company := XFactory.Of(NewCompany()).
	    State("inactive").
	    Attr(map[string]any{"Name": "test"}).
	    On("archive").
	    Create().(*Company)

	// 预置实例（补足语义）：已有实例计入数量，不足部分由工厂新建
	boss := XFactory.Of(NewUser()).Create()
	company := XFactory.Of(NewCompany()).
	    WithModels("Owner", boss).
	    With(3, "Divisions").
	    Create().(*Company)

注意：
1. 同一路径的重复 With 请求会被合批，数量累加
2. 从属关联先于根模型写入，拥有关联和多对多关联在根模型写入后建立
3. 所有写入均委托 Beego ORM 完成，工厂自身不实现持久化与查询

5. 作用域

作用域用于固定当前 goroutine 的连接选择和随机种子：

	sid := XFactory.Scope("default", 42) // 开始工厂作用域
	defer XFactory.Defer()               // 结束工厂作用域

	// 作用域内的蓝图通过 Faker() 获取可复现的随机数据生成器
	user := XFactory.Of(NewUser()).Create()

6. 预设文件

预设文件为 YAML 格式，顶层键为表名，值为字段覆盖映射，在蓝图之后、状态之前应用：

	company:
	  Region: "EU"

	XFactory.LoadPresets("testdata/presets")

更多信息请参考模块文档。
*/
package XFactory
