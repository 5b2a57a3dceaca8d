// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XFactory

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/beego/beego/v2/client/orm"
	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XPrefs"
	"gopkg.in/yaml.v3"

	_ "github.com/go-sql-driver/mysql"
)

const (
	prefsSourceAddr = "Addr"
	prefsSourcePool = "Pool"
	prefsSourceConn = "Conn"
)

func init() {
	initSources(XPrefs.Asset())
}

// initSources 解析首选项中的数据源配置并注册数据库连接。
// 配置键名为 Factory/Source/<数据库类型>/<数据库别名>，
// 配置参数为 Addr（数据源地址）、Pool（连接池大小）和 Conn（最大连接数）。
// default 别名优先注册，以满足 beego/orm 对默认数据库的要求。
func initSources(prefs XPrefs.IBase) {
	if prefs == nil {
		XLog.Panic("XFactory.Init: prefs is nil.")
		return
	}

	keys := make([]string, 0)
	for _, key := range prefs.Keys() {
		if strings.HasPrefix(key, "Factory/Source/") {
			keys = append(keys, key)
		}
	}
	sortSourceKeys(keys)

	for _, key := range keys {
		parts := strings.Split(key, "/")
		if len(parts) < 4 {
			XLog.Panic("XFactory.Init: invalid prefs key %v.", key)
			return
		}

		sourceType := strings.ToLower(parts[2])
		sourceAlias := parts[3]

		if base, ok := prefs.Get(key).(XPrefs.IBase); ok && base != nil {
			sourceAddr := base.GetString(prefsSourceAddr)
			sourcePool := base.GetInt(prefsSourcePool)
			sourceConn := base.GetInt(prefsSourceConn)
			if err := orm.RegisterDataBase(sourceAlias, sourceType, sourceAddr,
				orm.MaxIdleConnections(sourcePool),
				orm.MaxOpenConnections(sourceConn)); err != nil {
				XLog.Panic("XFactory.Init: register database %v failed, err: %v", sourceAlias, err)
				return
			}
		} else {
			XLog.Error("XFactory.Init: invalid config for %v", key)
			continue
		}
	}
}

// sortSourceKeys 排序数据源配置键名。
// default 别名排在最前，以满足 beego/orm 对默认数据库的要求，其余键名按字典序排列。
func sortSourceKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		di := strings.HasSuffix(keys[i], "/default")
		dj := strings.HasSuffix(keys[j], "/default")
		if di != dj {
			return di
		}
		return keys[i] < keys[j]
	})
}

var (
	// presetCache 存储预设数据，键为表名，值为字段覆盖映射。
	presetCache map[string]map[string]any = make(map[string]map[string]any)

	// presetMutex 用于保护预设缓存的互斥锁。
	presetMutex sync.Mutex
)

// LoadPresets 从指定目录加载预设文件。
// dir 为预设目录，目录下的 *.yaml/*.yml 文件按名称顺序加载。
// 预设文件的顶层键为表名，值为字段覆盖映射，在蓝图之后、状态之前应用。
// 多个文件对同一表的预设会被合并，后加载的文件覆盖先加载的并记录警告日志。
// 返回加载的表数量，如果发生错误则返回 -1。
func LoadPresets(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		XLog.Error("XFactory.LoadPresets(%v): %v", dir, err)
		return -1
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	count := 0
	presetMutex.Lock()
	defer presetMutex.Unlock()
	for _, file := range files {
		raw, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			XLog.Error("XFactory.LoadPresets(%v): %v", file, err)
			return -1
		}
		doc := make(map[string]map[string]any)
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			XLog.Error("XFactory.LoadPresets(%v): %v", file, err)
			return -1
		}
		for table, overlay := range doc {
			if _, ok := presetCache[table]; ok {
				XLog.Warn("XFactory.LoadPresets(%v): preset of %v was overridden.", file, table)
			} else {
				count++
			}
			presetCache[table] = overlay
		}
	}
	return count
}

// presetFor 获取模型的预设数据。
// 返回字段覆盖映射，若无预设则返回 nil。
func presetFor(meta *modelInfo) map[string]any {
	presetMutex.Lock()
	defer presetMutex.Unlock()
	return presetCache[meta.Table]
}
