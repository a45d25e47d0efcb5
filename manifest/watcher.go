package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/hosting"
	"github.com/gocrud/beans/logging"
)

const debounceDelay = 200 * time.Millisecond

// Watcher 监听清单文件，文件变化时注册新增的组件。
// 已注册的名称会被跳过，注册表只增不减。
// 容器会在后台 goroutine 中被修改，应使用 di.Synchronized 包装。
type Watcher struct {
	*hosting.BackgroundService
	path      string
	container di.Container
	table     *TypeTable
	logger    logging.Logger
	mu        sync.Mutex
	closed    bool // Start 已退出，延迟触发的刷新不再注册
	callbacks []func(names []string)
}

// NewWatcher 创建清单监听器
func NewWatcher(path string, c di.Container, table *TypeTable, logger logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.WithCategory("manifest")
	return &Watcher{
		BackgroundService: hosting.NewBackgroundService("manifest-watcher", logger),
		path:              path,
		container:         c,
		table:             table,
		logger:            logger,
	}
}

// OnRegistered 注册新增组件后的回调
func (w *Watcher) OnRegistered(fn func(names []string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Start 监听清单所在目录，直到 ctx 取消或 Stop 被调用
func (w *Watcher) Start(ctx context.Context) error {
	defer w.Done()

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("manifest: failed to create file watcher: %w", err)
	}
	defer fsWatcher.Close()

	// 监听目录而不是文件，编辑器保存时常常会替换文件
	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("manifest: failed to watch %s: %w", w.path, err)
	}
	w.logger.Info("Watching manifest", logging.Field{Key: "path", Value: w.path})

	target := filepath.Clean(w.path)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		// 等待正在执行的刷新结束
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
	}()

	for {
		select {
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("Manifest changed", logging.Field{Key: "operation", Value: event.Op.String()})

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				w.mu.Lock()
				defer w.mu.Unlock()
				select {
				case <-w.StopChan():
					return
				default:
				}
				if w.closed {
					return
				}
				if _, err := w.refresh(); err != nil {
					w.logger.Error("Failed to refresh manifest", logging.Field{Key: "error", Value: err})
				}
			})

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", logging.Field{Key: "error", Value: err})

		case <-w.StopChan():
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// Refresh 重新读取清单并注册尚未存在的组件，返回新注册的名称
func (w *Watcher) Refresh() ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refresh()
}

func (w *Watcher) refresh() ([]string, error) {
	f, err := os.Open(w.path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, err
	}
	descs, err := Descriptors(doc, w.table)
	if err != nil {
		return nil, err
	}

	var added []string
	for _, desc := range descs {
		if w.container.Contains(desc.Name) {
			continue
		}
		if err := w.container.Register(desc); err != nil {
			return added, err
		}
		added = append(added, desc.Name)
	}

	if len(added) > 0 {
		w.logger.Info("Registered components from manifest", logging.Field{Key: "components", Value: added})
		for _, fn := range w.callbacks {
			fn(added)
		}
	}
	return added, nil
}
