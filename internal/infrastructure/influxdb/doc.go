// Package influxdb records light state history in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. History is optional:
// Connect returns ErrDisabled when the integration is switched off, and the
// rest of the system runs without it.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	lights := light.NewService(repo, light.WithStateRecorder(client))
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Write failures are delivered to the SetOnError callback.
package influxdb
