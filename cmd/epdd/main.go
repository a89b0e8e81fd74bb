package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/epaper.go/pkg/epd"
	fx "github.com/robotalks/epaper.go/pkg/framework"
	"github.com/robotalks/epaper.go/pkg/remote/mqtt"
	"github.com/robotalks/epaper.go/pkg/remote/worker"
)

var configFile string

func init() {
	epd.SetupFlags()
	flag.StringVar(&configFile, "config", configFile, "YAML config file.")
}

func loadConfig() *epd.Config {
	if configFile == "" {
		return epd.NewConfig()
	}
	conf, err := epd.Load(configFile)
	if err != nil {
		glog.Exit(err)
	}
	return conf
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := loadConfig()
	id := conf.ID
	if id == "" {
		var err error
		if id, err = mqtt.DeviceID(); err != nil {
			glog.Exitf("machine id: %v", err)
		}
	}
	q, err := mqtt.NewQueueFromURL(conf.MQTTBrokerURL)
	if err != nil {
		glog.Exit(err)
	}

	err = epd.Run(conf, func(d *epd.Display) error {
		if err := q.Connect(); err != nil {
			return err
		}
		defer q.Close()
		cmds := mqtt.NewCommands(q, id)
		glog.Infof("serving %s%s", q.TopicPrefix, cmds.SubTopic)
		return fx.NewRunner().HandleSignals().Go(
			fx.NamedRun("mqtt", cmds),
			fx.NamedRun("display", &worker.Worker{Display: d, Source: cmds}),
		).Wait()
	})
	if err != nil {
		glog.Exit(err)
	}
}
