package cmd

import (
	"context"
	"flag"
	"io"
	"strings"

	"github.com/etnz/coinwatch"
	"github.com/etnz/coinwatch/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/sirupsen/logrus"
)

// Completion returns the shell completion of cw: subcommands, their flags,
// and the watched coin ids where a command expects them.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flags(flag.CommandLine),
	}
	root.Flags["config"] = predict.Files("*.yaml")
	root.Flags["state"] = predict.Files("*.json")

	for _, cmds := range commands() {
		for _, c := range cmds {
			fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
			c.SetFlags(fs)
			sub := &complete.Command{Flags: flags(fs)}
			switch c.Name() {
			case "remove", "holdings":
				sub.Args = complete.PredictFunc(watchedIDs)
			case "topic":
				if topics, err := docs.GetAllTopics(); err == nil {
					sub.Args = predict.Set(topics)
				}
			}
			root.Sub[c.Name()] = sub
		}
	}
	return root
}

func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	res := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			res[f.Name] = predict.Nothing
			return
		}
		res[f.Name] = predict.Something
	})
	return res
}

// watchedIDs predicts the ids of the watched coins starting with prefix.
func watchedIDs(prefix string) []string {
	cfg, err := loadConfig()
	if err != nil {
		return nil
	}
	s, closer, err := openSlot(cfg)
	if err != nil {
		return nil
	}
	if closer != nil {
		defer closer.Close()
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	var res []string
	for _, id := range coinwatch.Restore(context.Background(), s, log).Portfolio.IDs() {
		if strings.HasPrefix(id, prefix) {
			res = append(res, id)
		}
	}
	return res
}
