package config

func coreDefaults() Slice {
	return Slice{
		"frequency":            4000,
		"ifetch_buffer_size":   64,
		"decode_buffer_size":   32,
		"dispatch_buffer_size": 32,
		"rob_size":             352,
		"lq_size":              128,
		"sq_size":              72,
		"fetch_width":          6,
		"decode_width":         6,
		"dispatch_width":       6,
		"execute_width":        4,
		"lq_width":             2,
		"sq_width":             2,
		"retire_width":         5,
		"mispredict_penalty":   1,
		"scheduler_size":       128,
		"decode_latency":       1,
		"dispatch_latency":     1,
		"schedule_latency":     0,
		"execute_latency":      0,
		"branch_predictor":     "bimodal",
		"btb":                  "basic_btb",
	}
}

// cacheDefaults returns the default parameters of a named cache level.
// Unknown names get the generic last-level shape.
func cacheDefaults(level string) Slice {
	c := Slice{
		"frequency":        4000,
		"sets":             2048,
		"ways":             16,
		"rq_size":          64,
		"wq_size":          64,
		"pq_size":          32,
		"mshr_size":        64,
		"latency":          20,
		"max_tag_check":    1,
		"max_fill":         1,
		"prefetch_as_load": false,
		"virtual_prefetch": false,
		"prefetcher":       "no",
		"replacement":      "lru",
	}
	switch level {
	case "L1I":
		c["sets"], c["ways"], c["mshr_size"], c["latency"] = 64, 8, 8, 4
		c["max_tag_check"], c["max_fill"] = 2, 2
		c["virtual_prefetch"] = true
	case "L1D":
		c["sets"], c["ways"], c["mshr_size"], c["latency"] = 64, 12, 16, 5
		c["max_tag_check"], c["max_fill"] = 2, 2
	case "L2C":
		c["sets"], c["ways"], c["mshr_size"], c["latency"] = 1024, 8, 32, 10
	case "ITLB", "DTLB":
		c["sets"], c["ways"], c["mshr_size"], c["latency"] = 16, 4, 8, 1
		c["max_tag_check"], c["max_fill"] = 2, 2
		c["rq_size"], c["wq_size"], c["pq_size"] = 16, 16, 0
	case "STLB":
		c["sets"], c["ways"], c["mshr_size"], c["latency"] = 128, 12, 16, 8
		c["rq_size"], c["wq_size"], c["pq_size"] = 32, 32, 0
	}
	return c
}

func ptwDefaults() Slice {
	return Slice{
		"pscl5_set": 1,
		"pscl5_way": 2,
		"pscl4_set": 1,
		"pscl4_way": 4,
		"pscl3_set": 2,
		"pscl3_way": 4,
		"pscl2_set": 4,
		"pscl2_way": 8,
		"rq_size":   16,
		"mshr_size": 5,
		"max_read":  2,
		"max_write": 2,
	}
}

func pmemDefaults() Slice {
	return Slice{
		"frequency":        3200,
		"io_freq":          3200,
		"channels":         1,
		"ranks":            1,
		"banks":            8,
		"rows":             65536,
		"columns":          128,
		"channel_width":    8,
		"wq_size":          64,
		"rq_size":          64,
		"tRP":              12.5,
		"tRCD":             12.5,
		"tCAS":             12.5,
		"turn_around_time": 7.5,
	}
}

func vmemDefaults() Slice {
	return Slice{
		"pte_page_size":       4096,
		"num_levels":          5,
		"minor_fault_penalty": 200,
	}
}
