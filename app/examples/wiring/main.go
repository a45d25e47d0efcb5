package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/beans/app"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/logging"
	"github.com/gocrud/beans/manifest"
	"github.com/gocrud/beans/starter/cron"
	"github.com/gocrud/beans/starter/database"
	"github.com/gocrud/beans/starter/web"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Greeter struct {
	Logger logging.Logger `di:"logger"`
	DB     *gorm.DB       `di:"main"`
}

func (g *Greeter) Greet(name string) string {
	var version string
	g.DB.Raw("select sqlite_version()").Scan(&version)
	return fmt.Sprintf("hello %s (sqlite %s)", name, version)
}

// Ticker 是非共享组件，每次执行任务时重新创建
type Ticker struct {
	greeter *Greeter
}

func NewTicker(greeter *Greeter) *Ticker {
	return &Ticker{greeter: greeter}
}

func (t *Ticker) Run() {
	t.greeter.Logger.Info(t.greeter.Greet("cron"))
}

type GreetController struct {
	Greeter *Greeter `di:"greeter"`
}

func (c *GreetController) MountRoutes(router gin.IRouter) {
	router.GET("/greet/:name", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, c.Greeter.Greet(ctx.Param("name")))
	})
}

func main() {
	err := app.Run(
		app.WithManifest("components.yaml"),
		app.WithTypes(func(table *manifest.TypeTable) error {
			if err := manifest.AddType[*Greeter](table, "greeter"); err != nil {
				return err
			}
			return table.AddConstructor("ticker", NewTicker)
		}),
		database.New(database.WithDatabase("main", sqlite.Open("file::memory:?cache=shared"))),
		cron.New(cron.AddComponentJob("@every 10s", "tick", "ticker")),
		web.New(
			web.WithControllers(di.Describe[*GreetController]("greet-controller")),
			web.WithComponentsEndpoint("/components"),
		),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
