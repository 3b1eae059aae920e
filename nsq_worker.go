package blocksci

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/couchbaselabs/logg"
	"github.com/nsqio/go-nsq"
)

// A worker which pulls jobs off of NSQ and processes them.  Each
// message is a serialized JobDescriptor; the job factory turns it into
// a Runnable.
type NsqWorker struct {
	Configuration Configuration
}

func NewNsqWorker(c Configuration) *NsqWorker {
	return &NsqWorker{
		Configuration: c,
	}
}

// Connect to nsqlookupd and handle incoming jobs until stopChan closes.
func (n NsqWorker) HandleEvents(stopChan chan struct{}) error {

	config := nsq.NewConfig()

	consumer, err := nsq.NewConsumer(n.Configuration.NsqdTopic, n.Configuration.NsqdChannel, config)
	if err != nil {
		return fmt.Errorf("Error creating nsq consumer: %v", err)
	}

	consumer.AddHandler(nsq.HandlerFunc(func(message *nsq.Message) error {
		return n.handleMessage(message.Body)
	}))

	if err := consumer.ConnectToNSQLookupd(n.Configuration.NsqLookupdUrl); err != nil {
		return fmt.Errorf("Error connecting to nsqlookupd: %v", err)
	}

	logg.LogTo("NSQ_WORKER", "Listening on topic: %v", n.Configuration.NsqdTopic)

	<-stopChan
	consumer.Stop()
	<-consumer.StopChan

	return nil

}

func (n NsqWorker) handleMessage(body []byte) error {

	jobDescriptor := JobDescriptor{}
	if err := json.Unmarshal(body, &jobDescriptor); err != nil {
		// a message that can't decode will never decode, don't requeue
		logg.LogError(fmt.Errorf("Error decoding job descriptor: %v", err))
		return nil
	}

	logg.LogTo("NSQ_WORKER", "Handling job: %+v", jobDescriptor)

	job, err := CreateJob(n.Configuration, jobDescriptor)
	if err != nil {
		logg.LogError(fmt.Errorf("Error creating job: %v", err))
		return err
	}

	// run the job synchronously: nsq redelivery is our retry story, and
	// running one job per message keeps worker load predictable
	wg := &sync.WaitGroup{}
	wg.Add(1)
	job.Run(wg)
	wg.Wait()

	return nil

}
