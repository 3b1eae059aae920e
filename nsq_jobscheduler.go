package blocksci

import (
	"encoding/json"

	"github.com/couchbaselabs/logg"
	"github.com/nsqio/go-nsq"
)

type NsqJobScheduler struct {
	Configuration Configuration
}

func NewNsqJobScheduler(c Configuration) *NsqJobScheduler {
	return &NsqJobScheduler{
		Configuration: c,
	}
}

func (j NsqJobScheduler) ScheduleJob(jobDescriptor JobDescriptor) error {

	config := nsq.NewConfig()
	producer, err := nsq.NewProducer(j.Configuration.NsqdUrl, config)
	if err != nil {
		return err
	}
	defer producer.Stop()

	data, err := json.Marshal(jobDescriptor)
	if err != nil {
		return err
	}

	if err := producer.Publish(j.Configuration.NsqdTopic, data); err != nil {
		return err
	}

	logg.LogTo("JOB_SCHEDULER", "Published to nsq: %v", string(data))

	return nil
}
