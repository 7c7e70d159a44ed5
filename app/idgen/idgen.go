package main

import (
	"flag"
	"fmt"

	"github.com/tsfdsong/snowflake/app/idgen/internal/config"
	"github.com/tsfdsong/snowflake/app/idgen/internal/handler"
	"github.com/tsfdsong/snowflake/app/idgen/internal/svc"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"
)

var configFile = flag.String("f", "etc/idgen.yaml", "the config file")

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c)
	logx.MustSetup(c.Log)

	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(c)
	handler.RegisterHandlers(server, ctx)
	httpx.SetErrorHandlerCtx(handler.ErrorHandler)

	fmt.Printf("Starting idgen server at %s:%d, datacenter=%d, machine=%d...\n",
		c.Host, c.Port, c.Sequencer.DatacenterId, c.Sequencer.MachineId)
	server.Start()
}
