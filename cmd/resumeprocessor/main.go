package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// 命令行参数定义
var (
	command      = pflag.String("cmd", "run", "执行的命令: run=目录轮询守护进程, extract=仅提取文本, parse=仅解析文本, fetch=取回归档对象")
	configPath   = pflag.String("config", "", "配置文件路径，空则按默认位置查找")
	runOnce      = pflag.Bool("once", false, "run命令只执行一次扫描后退出")
	pdfFilePath  = pflag.String("pdf", "", "extract命令的PDF文件路径")
	textFilePath = pflag.String("text", "", "parse命令的文本文件路径")
	strategy     = pflag.String("strategy", "", "提取策略: heuristic 或 llm，空则使用配置文件中的值")
	objectKey    = pflag.String("object", "", "fetch命令的归档对象键")
	objectKind   = pflag.String("kind", "parsed", "fetch命令的对象类型: original 或 parsed")
	outputPath   = pflag.String("out", "", "fetch命令的输出文件路径，空则写到标准输出")
)

func main() {
	pflag.Parse()

	var err error
	switch *command {
	case "run":
		err = handleRunCommand()
	case "extract":
		err = handleExtractCommand()
	case "parse":
		err = handleParseCommand()
	case "fetch":
		err = handleFetchCommand()
	default:
		fmt.Printf("错误: 未知命令 '%s'。支持的命令: run, extract, parse, fetch\n", *command)
		pflag.Usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
