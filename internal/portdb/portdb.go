// Package portdb provides the static port-number to service-name table used
// to label PortInfo entries. It mirrors the role of the portmap built by
// data::mod in the original scanner, minus the lazily-built HashMap wrapper:
// a Go map literal is simpler and just as fast to read from many goroutines.
package portdb

// names maps well-known TCP/UDP port numbers to a short, human-readable
// service label. It is not exhaustive; Lookup falls back to "unknown" for
// anything absent.
var names = map[uint16]string{
	7:     "echo",
	20:    "ftp-data",
	21:    "ftp",
	22:    "ssh",
	23:    "telnet",
	25:    "smtp",
	37:    "time",
	53:    "domain",
	67:    "dhcps",
	68:    "dhcpc",
	69:    "tftp",
	80:    "http",
	88:    "kerberos",
	110:   "pop3",
	111:   "rpcbind",
	119:   "nntp",
	123:   "ntp",
	135:   "msrpc",
	137:   "netbios-ns",
	138:   "netbios-dgm",
	139:   "netbios-ssn",
	143:   "imap",
	161:   "snmp",
	162:   "snmptrap",
	179:   "bgp",
	194:   "irc",
	389:   "ldap",
	443:   "https",
	445:   "microsoft-ds",
	465:   "smtps",
	500:   "isakmp",
	514:   "syslog",
	515:   "printer",
	520:   "rip",
	521:   "ripng",
	540:   "uucp",
	543:   "klogin",
	544:   "kshell",
	546:   "dhcpv6-client",
	547:   "dhcpv6-server",
	548:   "afp",
	554:   "rtsp",
	587:   "submission",
	631:   "ipp",
	636:   "ldaps",
	873:   "rsync",
	902:   "vmware-auth",
	989:   "ftps-data",
	990:   "ftps",
	993:   "imaps",
	995:   "pop3s",
	1080:  "socks",
	1433:  "ms-sql-s",
	1434:  "ms-sql-m",
	1521:  "oracle",
	1723:  "pptp",
	1883:  "mqtt",
	1900:  "ssdp",
	2049:  "nfs",
	2181:  "zookeeper",
	2375:  "docker",
	2376:  "docker-tls",
	2379:  "etcd-client",
	2380:  "etcd-peer",
	3000:  "dev-http",
	3128:  "squid",
	3260:  "iscsi",
	3306:  "mysql",
	3389:  "rdp",
	3690:  "svn",
	4000:  "dev-http-alt",
	4369:  "epmd",
	4789:  "vxlan",
	5000:  "upnp",
	5060:  "sip",
	5061:  "sips",
	5222:  "xmpp-client",
	5269:  "xmpp-server",
	5353:  "mdns",
	5432:  "postgresql",
	5601:  "kibana",
	5672:  "amqp",
	5900:  "vnc",
	5984:  "couchdb",
	6379:  "redis",
	6443:  "kube-apiserver",
	6660:  "irc-alt",
	6667:  "irc",
	7001:  "weblogic",
	7077:  "spark",
	7199:  "cassandra-jmx",
	7474:  "neo4j",
	7687:  "bolt",
	8000:  "http-alt",
	8008:  "http-alt2",
	8080:  "http-proxy",
	8086:  "influxdb",
	8089:  "splunkd",
	8091:  "couchbase",
	8443:  "https-alt",
	8500:  "consul",
	8529:  "arangodb",
	8649:  "ganglia",
	8686:  "jmx",
	9000:  "sonarqube",
	9042:  "cassandra",
	9090:  "prometheus",
	9092:  "kafka",
	9100:  "jetdirect",
	9200:  "elasticsearch",
	9300:  "elasticsearch-transport",
	9418:  "git",
	9999:  "abyss",
	11211: "memcached",
	15672: "rabbitmq-mgmt",
	25565: "minecraft",
	27017: "mongodb",
	28015: "rethinkdb",
	50000: "db2",
	54321: "tcpwrapped",
}

// Lookup returns the human-readable service name for port, or "unknown" if
// the port has no entry.
func Lookup(port uint16) string {
	if name, ok := names[port]; ok {
		return name
	}
	return "unknown"
}
