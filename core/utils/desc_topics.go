package utils

import (
	"html/template"
	"log"
	"runtime"

	"github.com/wangkuiyi/parallel"

	"github.com/godist/starling/core/gibbs"
)

func DescribeTopics(m *gibbs.Model, v *gibbs.Vocab,
	maxTermsPerTopic int) []*TopicDesc {

	log.Printf("Generating topic descriptions ... ")
	descs := make([]*TopicDesc, m.NumTopics)

	parallel.ForN(0, m.NumTopics, 1, 2*runtime.NumCPU(), func(topic int) {
		d := &TopicDesc{
			Id:     topic,
			Mass:   m.GlobalTopic[topic],
			Tokens: make([]TokenDesc, 0, maxTermsPerTopic)}
		for i, tw := range m.TopTerms(topic) {
			if i >= maxTermsPerTopic {
				break
			}
			d.Tokens = append(d.Tokens,
				TokenDesc{template.HTML(v.Token(tw.Term)), tw.Weight})
		}
		descs[topic] = d
	})

	log.Printf("Done generating topic descriptions.")
	return descs
}

type TopicDesc struct {
	Id     int
	Mass   float64
	Tokens []TokenDesc
}
type TokenDesc struct {
	Word   template.HTML
	Weight float64
}
