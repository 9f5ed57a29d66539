package main

import (
	"flag"
	"fmt"

	"github.com/hiturf/mcp-oi-assistant/internal/conf"
	"github.com/hiturf/mcp-oi-assistant/internal/server"
	"github.com/hiturf/mcp-oi-assistant/internal/service"
	"github.com/hiturf/mcp-oi-assistant/pkg/jwt"
	"github.com/hiturf/mcp-oi-assistant/pkg/logging"
	"github.com/hiturf/mcp-oi-assistant/pkg/snowflake"
)

var confPath = flag.String("conf", "./config/config.yaml", "配置文件路径")

func main() {
	// 加载配置
	flag.Parse()
	cfg := conf.Load(*confPath)
	if err := conf.ValidateConfig(cfg); err != nil {
		fmt.Printf("invalid config, err:%v\n", err)
		return
	}

	// 初始化日志
	logger, err := logging.NewLogger(cfg)
	if err != nil {
		fmt.Printf("init logger failed, err:%v\n", err)
		return
	}
	defer logger.Sync()

	if cfg.GetBool("auth.enable") {
		jwt.MustInit(cfg) // 初始化 jwt
	}
	snowflake.MustInit(cfg) // 初始化 snowflake
	service.MustInit(cfg)   // 初始化评测流水线

	// 初始化路由
	r := server.SetupRoutes(cfg)
	// 启动服务
	err = r.Run(fmt.Sprintf(":%d", cfg.GetInt("server.port")))
	if err != nil {
		panic(err)
	}
}
